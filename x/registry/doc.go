/*
Package registry implements the program directory: a catalog of deployed
programs keyed by program id, each entry naming its author and the content
id of its interface manifest. Entries are author-owned; only the account
that registered a program may update its record.
*/
package registry
