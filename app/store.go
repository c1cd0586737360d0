package app

import (
	"github.com/signet-one/signet"
	"github.com/signet-one/signet/errors"
	"github.com/signet-one/signet/store"
)

var accountPrefix = []byte("account:")

func accountKey(id signet.AccountID) []byte {
	return append(append([]byte{}, accountPrefix...), id[:]...)
}

// LoadAccount reads an account snapshot from the ledger. A missing key
// yields an empty account, the ledger does not distinguish the two.
func LoadAccount(db store.ReadOnlyKVStore, id signet.AccountID) (signet.Account, error) {
	data, err := db.Get(accountKey(id))
	if err != nil {
		return signet.Account{}, errors.Wrapf(err, "load account %s", id)
	}
	return signet.Account{ID: id, Data: data}, nil
}

// SaveAccount persists an account snapshot. Writing empty data deletes the
// record, keeping the store free of tombstones.
func SaveAccount(db store.KVStore, acct signet.Account) error {
	key := accountKey(acct.ID)
	if acct.IsEmpty() {
		return errors.Wrapf(db.Delete(key), "delete account %s", acct.ID)
	}
	return errors.Wrapf(db.Set(key, acct.Data), "save account %s", acct.ID)
}
