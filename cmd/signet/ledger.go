package main

import (
	"crypto/sha256"
	"encoding/json"
	"os"

	"github.com/kelseyhightower/envconfig"

	"github.com/signet-one/signet"
	"github.com/signet-one/signet/app"
	"github.com/signet-one/signet/errors"
	"github.com/signet-one/signet/store"
	"github.com/signet-one/signet/x/multisig"
	"github.com/signet-one/signet/x/registry"
	"github.com/signet-one/signet/x/treasury"
)

// Config holds the CLI defaults, read from SIGNET_* environment variables.
type Config struct {
	LedgerPath      string `envconfig:"LEDGER_PATH" default:"signet.ledger.json"`
	MultisigProgram string `envconfig:"MULTISIG_PROGRAM"`
	TreasuryProgram string `envconfig:"TREASURY_PROGRAM"`
	RegistryProgram string `envconfig:"REGISTRY_PROGRAM"`
}

// env is everything a command needs: the configured program ids, the
// file-backed ledger and a dispatcher with all three programs mounted.
type env struct {
	cfg        Config
	db         store.CacheableKVStore
	dispatcher *app.Dispatcher

	multisigID signet.ProgramID
	treasuryID signet.ProgramID
	registryID signet.ProgramID
}

func openEnv() (*env, error) {
	var cfg Config
	if err := envconfig.Process("signet", &cfg); err != nil {
		return nil, errors.Wrap(err, "read environment")
	}

	e := &env{cfg: cfg}
	var err error
	if e.multisigID, err = programID(cfg.MultisigProgram, "signet/multisig"); err != nil {
		return nil, errors.Wrap(err, "multisig program id")
	}
	if e.treasuryID, err = programID(cfg.TreasuryProgram, "signet/treasury"); err != nil {
		return nil, errors.Wrap(err, "treasury program id")
	}
	if e.registryID, err = programID(cfg.RegistryProgram, "signet/registry"); err != nil {
		return nil, errors.Wrap(err, "registry program id")
	}

	if e.db, err = loadLedger(cfg.LedgerPath); err != nil {
		return nil, err
	}

	e.dispatcher = app.NewDispatcher(e.db)

	msRouter := app.NewRouter()
	multisig.RegisterRoutes(msRouter, e.treasuryID)
	e.dispatcher.RegisterProgram(e.multisigID, multisig.DecodeInstruction, msRouter)

	trRouter := app.NewRouter()
	treasury.RegisterRoutes(trRouter)
	e.dispatcher.RegisterProgram(e.treasuryID, treasury.DecodeInstruction, trRouter)

	rgRouter := app.NewRouter()
	registry.RegisterRoutes(rgRouter, unixNow)
	e.dispatcher.RegisterProgram(e.registryID, registry.DecodeInstruction, rgRouter)

	return e, nil
}

// submit delivers one envelope and, on success, flushes the ledger back to
// disk.
func (e *env) submit(envlp *app.Envelope) (*signet.Result, error) {
	res, err := e.dispatcher.Deliver(envlp)
	if err != nil {
		return nil, err
	}
	if err := saveLedger(e.cfg.LedgerPath, e.db); err != nil {
		return nil, err
	}
	return res, nil
}

// programID resolves a configured base58 program id, falling back to a
// well-known id derived from the program's tag.
func programID(configured, tag string) (signet.ProgramID, error) {
	if configured == "" {
		return signet.ProgramID(sha256.Sum256([]byte(tag))), nil
	}
	id, err := signet.AccountIDFromString(configured)
	return signet.ProgramID(id), err
}

type ledgerRecord struct {
	Key   []byte `json:"key"`
	Value []byte `json:"value"`
}

// loadLedger reads the ledger file into a fresh in-memory store. A missing
// file is an empty ledger.
func loadLedger(path string) (store.CacheableKVStore, error) {
	db := store.MemStore()
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return db, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read ledger")
	}
	var records []ledgerRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, errors.Wrap(err, "parse ledger")
	}
	for _, rec := range records {
		if err := db.Set(rec.Key, rec.Value); err != nil {
			return nil, errors.Wrap(err, "restore ledger")
		}
	}
	return db, nil
}

func saveLedger(path string, db store.ReadOnlyKVStore) error {
	var records []ledgerRecord
	err := db.Iterate(nil, nil, func(key, value []byte) bool {
		records = append(records, ledgerRecord{
			Key:   append([]byte{}, key...),
			Value: append([]byte{}, value...),
		})
		return true
	})
	if err != nil {
		return errors.Wrap(err, "walk ledger")
	}
	raw, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode ledger")
	}
	return errors.Wrap(os.WriteFile(path, raw, 0o644), "write ledger")
}
