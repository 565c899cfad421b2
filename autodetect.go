// Copyright (C) 2024 The materialbin Authors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package materialbin

import (
	"log"
	"sync"

	"github.com/dchest/siphash"
	"github.com/google/uuid"
)

// detectKey is a low-collision fingerprint of an input blob, cheap
// enough to compute on every Detect call: siphash over the buffer's
// length plus its first and last 64 bytes. Two distinct CMD files
// colliding on this key and on schema would have to share both edges
// and length, which in practice only identical files do.
func detectKey(buf []byte) uint64 {
	const edge = 64
	tmp := make([]byte, 0, 8+2*edge)
	n := len(buf)
	for i := 0; i < 8; i++ {
		tmp = append(tmp, byte(n>>(8*i)))
	}
	if n <= 2*edge {
		tmp = append(tmp, buf...)
	} else {
		tmp = append(tmp, buf[:edge]...)
		tmp = append(tmp, buf[n-edge:]...)
	}
	return siphash.Hash(detectKeyK0, detectKeyK1, tmp)
}

const (
	detectKeyK0 = 0x6d6174657269616c
	detectKeyK1 = 0x62696e6465746563
)

var (
	detectCacheMu sync.Mutex
	detectCache   = map[uint64]SchemaVersion{}
)

// Detect implements the auto-detect driver of §4.9: it tries every
// known schema, newest first, and returns the tree and schema of the
// first one that parses cleanly. A successful result is memoized by a
// fingerprint of the input so repeated detection of the same bytes
// (e.g. a CLI walking the same file twice) skips the trial loop.
func Detect(buf []byte) (*CompiledMaterialDefinition, SchemaVersion, error) {
	id := uuid.New()
	key := detectKey(buf)

	detectCacheMu.Lock()
	cached, ok := detectCache[key]
	detectCacheMu.Unlock()
	if ok {
		m, err := Decode(buf, cached)
		if err == nil {
			log.Printf("materialbin detect %s: cache hit, schema %s", id, cached)
			return m, cached, nil
		}
		// The cache disagreed with this buffer (a hash collision, or a
		// buffer that was mutated in place); fall through to the full
		// trial loop rather than trust a stale entry.
	}

	var lastErr error
	for _, schema := range NewestSchemas {
		m, err := Decode(buf, schema)
		if err == nil {
			detectCacheMu.Lock()
			detectCache[key] = schema
			detectCacheMu.Unlock()
			log.Printf("materialbin detect %s: matched schema %s", id, schema)
			return m, schema, nil
		}
		lastErr = err
	}

	log.Printf("materialbin detect %s: no schema matched, last error: %s", id, lastErr)
	return nil, 0, lastErr
}
