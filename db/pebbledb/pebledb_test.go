package pebbledb

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/briwylde08/dead-mans-draw/db"
)

func TestWriteTx(t *testing.T) {
	c := qt.New(t)
	database, err := New(db.Options{Path: t.TempDir()})
	c.Assert(err, qt.IsNil)
	defer func() { _ = database.Close() }()

	tx := database.WriteTx()
	c.Assert(tx.Set([]byte("k1"), []byte("v1")), qt.IsNil)
	c.Assert(tx.Commit(), qt.IsNil)

	v, err := database.Get([]byte("k1"))
	c.Assert(err, qt.IsNil)
	c.Assert(string(v), qt.Equals, "v1")

	_, err = database.Get([]byte("missing"))
	c.Assert(err, qt.Equals, db.ErrKeyNotFound)
}

func TestIterate(t *testing.T) {
	c := qt.New(t)
	database, err := New(db.Options{Path: t.TempDir()})
	c.Assert(err, qt.IsNil)
	defer func() { _ = database.Close() }()

	tx := database.WriteTx()
	c.Assert(tx.Set([]byte("session/1"), []byte("a")), qt.IsNil)
	c.Assert(tx.Set([]byte("session/2"), []byte("b")), qt.IsNil)
	c.Assert(tx.Set([]byte("other/1"), []byte("c")), qt.IsNil)
	c.Assert(tx.Commit(), qt.IsNil)

	var got []string
	err = database.Iterate([]byte("session/"), func(k, v []byte) bool {
		got = append(got, string(k)+"="+string(v))
		return true
	})
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.DeepEquals, []string{"1=a", "2=b"})
}

func TestWriteTxApply(t *testing.T) {
	c := qt.New(t)
	database, err := New(db.Options{Path: t.TempDir()})
	c.Assert(err, qt.IsNil)
	defer func() { _ = database.Close() }()

	src := database.WriteTx()
	c.Assert(src.Set([]byte("k"), []byte("from-src")), qt.IsNil)

	dst := database.WriteTx()
	c.Assert(dst.Apply(src), qt.IsNil)
	c.Assert(dst.Commit(), qt.IsNil)

	v, err := database.Get([]byte("k"))
	c.Assert(err, qt.IsNil)
	c.Assert(string(v), qt.Equals, "from-src")
}

func TestClosedDB(t *testing.T) {
	c := qt.New(t)

	database, err := New(db.Options{Path: t.TempDir()})
	c.Assert(err, qt.IsNil)

	key := []byte("key")
	value := []byte("value")
	wTx := database.WriteTx()
	c.Assert(wTx.Set(key, value), qt.IsNil)
	c.Assert(wTx.Commit(), qt.IsNil)

	c.Assert(database.Close(), qt.IsNil)
	// Closing twice must not panic.
	c.Assert(database.Close(), qt.IsNil)
}
