// Package storage persists every artifact of the platform in a prefixed
// key-value store. Each entity type lives in its own arena: a primary table
// keyed by a monotonically assigned id plus the secondary indexes needed
// for lookups, all updated inside the same write transaction. The following
// prefixes are used:
//   - 'c/'  campaigns
//   - 'b/'  backings (per campaign, append-only)
//   - 'bi/' (campaign, backer) -> seen marker index
//   - 'vs/' vesting schedules
//   - 'p/'  liquidity pools
//   - 'pi/' token-pair -> pool id index
//   - 'lp/' liquidity positions (per pool, append-only)
//   - 'o/'  orders
//   - 'oi/' trader -> order ids index
//   - 'ci/' creator -> campaign ids index
//   - 'r/'  creator reputation profiles
//   - 'ro/' role membership
//   - 'k/'  encryption keys
//   - 'sq/' id sequences
package storage

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/prefixeddb"
)

var (
	campaignPrefix   = []byte("c/")
	backingPrefix    = []byte("b/")
	backerIndex      = []byte("bi/")
	vestingPrefix    = []byte("vs/")
	poolPrefix       = []byte("p/")
	pairIndexPrefix  = []byte("pi/")
	positionPrefix   = []byte("lp/")
	orderPrefix      = []byte("o/")
	orderIndexPrefix = []byte("oi/")
	creatorIndex     = []byte("ci/")
	profilePrefix    = []byte("r/")
	rolePrefix       = []byte("ro/")
	keyPrefix        = []byte("k/")
	sequencePrefix   = []byte("sq/")
)

// ErrNotFound is returned when the requested artifact does not exist.
var ErrNotFound = errors.New("artifact not found")

// Storage wraps the database with typed accessors for every artifact.
// The global lock serializes writers so that id allocation and index
// maintenance stay consistent with the primary tables.
type Storage struct {
	db         db.Database
	globalLock sync.Mutex
}

// New creates a new Storage instance on the given database.
func New(database db.Database) *Storage {
	return &Storage{db: database}
}

// Close closes the underlying database.
func (s *Storage) Close() {
	s.db.Close()
}

// Artifact encoding/decoding
func encodeArtifact(a any) ([]byte, error) {
	encOpts := cbor.CoreDetEncOptions()
	em, err := encOpts.EncMode()
	if err != nil {
		return nil, fmt.Errorf("encode artifact: %w", err)
	}
	return em.Marshal(a)
}

func decodeArtifact(data []byte, out any) error {
	return cbor.Unmarshal(data, out)
}

// uint64Key encodes an id as a big-endian fixed-width key, so iteration
// order matches id order.
func uint64Key(id uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, id)
	return k
}

func bytesToUint64(k []byte) uint64 {
	return binary.BigEndian.Uint64(k)
}

func setArtifact(wTx db.WriteTx, prefix, key []byte, artifact any) error {
	data, err := encodeArtifact(artifact)
	if err != nil {
		return err
	}
	return prefixeddb.NewPrefixedWriteTx(wTx, prefix).Set(key, data)
}

func (s *Storage) getArtifact(prefix, key []byte, out any) error {
	rd := prefixeddb.NewPrefixedReader(s.db, prefix)
	data, err := rd.Get(key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("get artifact: %w", err)
	}
	return decodeArtifact(data, out)
}

func (s *Storage) hasKey(prefix, key []byte) bool {
	rd := prefixeddb.NewPrefixedReader(s.db, prefix)
	_, err := rd.Get(key)
	return err == nil
}

// iterate walks all keys under prefix that begin with keyPrefix, in key
// order.
func (s *Storage) iterate(prefix, keyPrefix []byte, fn func(k, v []byte) bool) error {
	rd := prefixeddb.NewPrefixedReader(s.db, prefix)
	return rd.Iterate(keyPrefix, fn)
}

// nextSequence increments and returns the sequence value for name inside
// the given write transaction. Sequences start at 1.
func nextSequence(wTx db.WriteTx, name []byte) (uint64, error) {
	sq := prefixeddb.NewPrefixedWriteTx(wTx, sequencePrefix)
	var current uint64
	data, err := sq.Get(name)
	switch {
	case err == nil:
		if len(data) != 8 {
			return 0, fmt.Errorf("corrupt sequence %q", name)
		}
		current = binary.BigEndian.Uint64(data)
	case errors.Is(err, db.ErrKeyNotFound):
		current = 0
	default:
		return 0, fmt.Errorf("read sequence %q: %w", name, err)
	}
	next := current + 1
	if err := sq.Set(name, uint64Key(next)); err != nil {
		return 0, fmt.Errorf("write sequence %q: %w", name, err)
	}
	return next, nil
}

// compositeKey joins key parts into one slice.
func compositeKey(parts ...[]byte) []byte {
	var buf bytes.Buffer
	for _, p := range parts {
		buf.Write(p)
	}
	return buf.Bytes()
}
