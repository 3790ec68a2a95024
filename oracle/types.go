// Copyright (c) 2026 The Props Protocol developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package oracle

import (
	"encoding/binary"
	"io"
	"math/big"

	"github.com/livethelifetv/props-protocol/props"
)

// Submission tracks the confirmations of one allocation commitment within
// the open round. Lifecycle: created on first confirmation, accumulates
// until quorum, then the round's submissions are cleared as a whole.
type Submission struct {
	Confirmations uint64
	Voters        []props.Address
}

// IsEmpty returns whether the entry can be treated as empty.
func (s *Submission) IsEmpty() bool {
	return s.Confirmations == 0
}

// HasVoted returns whether the validator already confirmed this commitment.
func (s *Submission) HasVoted(validator props.Address) bool {
	for _, v := range s.Voters {
		if v == validator {
			return true
		}
	}
	return false
}

// Allocation is the finalized per-app reward allocation of one day. The
// rewards distributor consumes it after finalization.
type Allocation struct {
	Apps    []props.Address
	Amounts []*big.Int
}

// IsEmpty returns whether the entry can be treated as empty.
func (a *Allocation) IsEmpty() bool {
	return len(a.Apps) == 0
}

// HashAllocations computes the commitment hash of a day's proposed per-app
// reward allocation. Every validator must derive the identical hash from
// the identical data: the day, both list lengths, the ordered app list and
// the ordered amount list.
func HashAllocations(day uint64, apps []props.Address, amounts []*big.Int) props.Bytes32 {
	return props.Blake2bFn(func(w io.Writer) {
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], day)
		w.Write(b[:])
		binary.BigEndian.PutUint64(b[:], uint64(len(apps)))
		w.Write(b[:])
		binary.BigEndian.PutUint64(b[:], uint64(len(amounts)))
		w.Write(b[:])
		for _, app := range apps {
			w.Write(app.Bytes())
		}
		for _, amount := range amounts {
			padded := props.BytesToBytes32(amount.Bytes())
			w.Write(padded.Bytes())
		}
	})
}
