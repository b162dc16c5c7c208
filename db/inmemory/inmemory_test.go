package inmemory

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/briwylde08/dead-mans-draw/db"
)

func TestGetSet(t *testing.T) {
	c := qt.New(t)
	database, err := New(db.Options{})
	c.Assert(err, qt.IsNil)

	tx := database.WriteTx()
	c.Assert(tx.Set([]byte("a"), []byte("1")), qt.IsNil)
	c.Assert(tx.Commit(), qt.IsNil)

	v, err := database.Get([]byte("a"))
	c.Assert(err, qt.IsNil)
	c.Assert(string(v), qt.Equals, "1")

	_, err = database.Get([]byte("missing"))
	c.Assert(err, qt.Equals, db.ErrKeyNotFound)
}

func TestIterate(t *testing.T) {
	c := qt.New(t)
	database, err := New(db.Options{})
	c.Assert(err, qt.IsNil)

	tx := database.WriteTx()
	c.Assert(tx.Set([]byte("s/1"), []byte("a")), qt.IsNil)
	c.Assert(tx.Set([]byte("s/2"), []byte("b")), qt.IsNil)
	c.Assert(tx.Set([]byte("x/1"), []byte("c")), qt.IsNil)
	c.Assert(tx.Commit(), qt.IsNil)

	var keys []string
	c.Assert(database.Iterate([]byte("s/"), func(k, v []byte) bool {
		keys = append(keys, string(k))
		return true
	}), qt.IsNil)
	c.Assert(keys, qt.DeepEquals, []string{"1", "2"})
}

func TestWriteConflict(t *testing.T) {
	c := qt.New(t)
	database, err := New(db.Options{})
	c.Assert(err, qt.IsNil)

	seed := database.WriteTx()
	c.Assert(seed.Set([]byte("k"), []byte("v0")), qt.IsNil)
	c.Assert(seed.Commit(), qt.IsNil)

	tx1 := database.WriteTx()
	tx2 := database.WriteTx()

	_, err = tx1.Get([]byte("k"))
	c.Assert(err, qt.IsNil)
	_, err = tx2.Get([]byte("k"))
	c.Assert(err, qt.IsNil)

	c.Assert(tx1.Set([]byte("k"), []byte("v1")), qt.IsNil)
	c.Assert(tx1.Commit(), qt.IsNil)

	c.Assert(tx2.Set([]byte("k"), []byte("v2")), qt.IsNil)
	c.Assert(tx2.Commit(), qt.Equals, db.ErrConflict)
}

func TestDiscard(t *testing.T) {
	c := qt.New(t)
	database, err := New(db.Options{})
	c.Assert(err, qt.IsNil)

	tx := database.WriteTx()
	c.Assert(tx.Set([]byte("k"), []byte("v")), qt.IsNil)
	tx.Discard()

	_, err = database.Get([]byte("k"))
	c.Assert(err, qt.Equals, db.ErrKeyNotFound)
}
