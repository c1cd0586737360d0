package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/signet-one/signet"
	"github.com/signet-one/signet/app"
	"github.com/signet-one/signet/x/registry"
)

func registryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Publish and inspect program directory entries",
	}
	cmd.AddCommand(
		registryRegisterCommand(),
		registryUpdateCommand(),
		registryShowCommand(),
	)
	return cmd
}

func registryRegisterCommand() *cobra.Command {
	var (
		signer      string
		program     string
		name        string
		version     string
		manifest    string
		description string
		tags        []string
	)
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a program under your account",
		RunE: func(_ *cobra.Command, _ []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			author, err := parseID(signer)
			if err != nil {
				return err
			}
			progID, err := parseID(program)
			if err != nil {
				return err
			}
			target := signet.ProgramID(progID)
			msg := &registry.RegisterMsg{
				ProgramID:   target,
				Name:        name,
				Version:     version,
				ManifestCID: manifest,
				Description: description,
				Tags:        tags,
			}
			instruction, err := registry.EncodeInstruction(msg)
			if err != nil {
				return err
			}
			entry := registry.EntryAccount(e.registryID, target)
			envlp := &app.Envelope{
				Program:     e.registryID,
				Instruction: instruction,
				Accounts: []signet.AccountID{
					registry.StateAccount(e.registryID),
					entry,
					author,
				},
				Signers: []signet.AccountID{author},
			}
			if _, err := e.submit(envlp); err != nil {
				return err
			}
			slog.Info("program registered", "entry", entry, "name", name)
			return nil
		},
	}
	cmd.Flags().StringVar(&signer, "signer", "", "author account id")
	cmd.Flags().StringVar(&program, "program", "", "program id to register")
	cmd.Flags().StringVar(&name, "name", "", "program name")
	cmd.Flags().StringVar(&version, "version", "", "program version")
	cmd.Flags().StringVar(&manifest, "manifest", "", "manifest content id")
	cmd.Flags().StringVar(&description, "description", "", "short description")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "tag (repeatable)")
	return cmd
}

func registryUpdateCommand() *cobra.Command {
	var (
		signer      string
		program     string
		version     string
		manifest    string
		description string
		tags        []string
	)
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update the entry you registered",
		RunE: func(_ *cobra.Command, _ []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			author, err := parseID(signer)
			if err != nil {
				return err
			}
			progID, err := parseID(program)
			if err != nil {
				return err
			}
			msg := &registry.UpdateMsg{
				Version:     version,
				ManifestCID: manifest,
				Description: description,
				Tags:        tags,
			}
			instruction, err := registry.EncodeInstruction(msg)
			if err != nil {
				return err
			}
			entry := registry.EntryAccount(e.registryID, signet.ProgramID(progID))
			envlp := &app.Envelope{
				Program:     e.registryID,
				Instruction: instruction,
				Accounts:    []signet.AccountID{entry, author},
				Signers:     []signet.AccountID{author},
			}
			if _, err := e.submit(envlp); err != nil {
				return err
			}
			slog.Info("entry updated", "entry", entry)
			return nil
		},
	}
	cmd.Flags().StringVar(&signer, "signer", "", "author account id")
	cmd.Flags().StringVar(&program, "program", "", "registered program id")
	cmd.Flags().StringVar(&version, "version", "", "program version")
	cmd.Flags().StringVar(&manifest, "manifest", "", "manifest content id")
	cmd.Flags().StringVar(&description, "description", "", "short description")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "tag (repeatable)")
	return cmd
}

func registryShowCommand() *cobra.Command {
	var program string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a registered program's entry",
		RunE: func(_ *cobra.Command, _ []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			progID, err := parseID(program)
			if err != nil {
				return err
			}
			entryID := registry.EntryAccount(e.registryID, signet.ProgramID(progID))
			acct, err := app.LoadAccount(e.db, entryID)
			if err != nil {
				return err
			}
			if acct.IsEmpty() {
				return fmt.Errorf("program %s is not registered", progID)
			}
			entry, err := registry.UnmarshalEntry(acct.Data)
			if err != nil {
				return err
			}
			fmt.Printf("program:     %s\n", entry.ProgramID)
			fmt.Printf("name:        %s %s\n", entry.Name, entry.Version)
			fmt.Printf("author:      %s\n", entry.Author)
			fmt.Printf("manifest:    %s\n", entry.ManifestCID)
			fmt.Printf("registered:  %d\n", entry.RegisteredAt)
			if entry.Description != "" {
				fmt.Printf("description: %s\n", entry.Description)
			}
			if len(entry.Tags) > 0 {
				fmt.Printf("tags:        %s\n", strings.Join(entry.Tags, ", "))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&program, "program", "", "registered program id")
	return cmd
}
