package qgram

import (
	"testing"

	"github.com/grailbio/mars/score"
	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/require"
)

func TestPackedKeys(t *testing.T) {
	enc := NewEncoder(score.DNA, 3)
	require.True(t, enc.Packed())
	// A=0 C=1 G=2, 3 bits each.
	expect.EQ(t, enc.Key([]byte("ACG")), Key(0<<6|1<<3|2))
	keys := enc.Keys(nil, []byte("ACGTA"), false)
	require.Len(t, keys, 3)
	for p, k := range keys {
		expect.EQ(t, k, enc.Key([]byte("ACGTA")[p:]))
	}
}

func TestCyclicKeys(t *testing.T) {
	seq := []byte("ACGTTGCA")
	for _, alpha := range []score.Alphabet{score.DNA, score.Protein} {
		for _, q := range []int{2, 5, 13, 30} {
			enc := NewEncoder(alpha, q)
			keys := enc.Keys(nil, seq, true)
			require.Len(t, keys, len(seq))
			for p, k := range keys {
				gram := make([]byte, q)
				for i := range gram {
					gram[i] = seq[(p+i)%len(seq)]
				}
				expect.EQ(t, k, enc.Key(gram), "alpha %v q %d pos %d", alpha, q, p)
			}
		}
	}
}

func TestHashedKeys(t *testing.T) {
	enc := NewEncoder(score.Protein, 13)
	require.False(t, enc.Packed())
	a := enc.Key([]byte("ARNDCQEGHILKM"))
	b := enc.Key([]byte("ARNDCQEGHILKW"))
	expect.True(t, a != b)
	expect.EQ(t, a, enc.Key([]byte("ARNDCQEGHILKMFFF")))
}

func TestIndex(t *testing.T) {
	enc := NewEncoder(score.DNA, 2)
	idx := NewIndex(enc, []byte("ACACGAC"))
	expect.EQ(t, idx.Len(), 7)
	expect.EQ(t, idx.Lookup(enc.Key([]byte("AC"))), []int32{0, 2, 5})
	expect.EQ(t, idx.Lookup(enc.Key([]byte("CG"))), []int32{3})
	expect.EQ(t, len(idx.Lookup(enc.Key([]byte("TT")))), 0)
	expect.EQ(t, idx.Distinct(), 4)
	// Too short to hold a q-gram.
	expect.EQ(t, NewIndex(NewEncoder(score.DNA, 4), []byte("ACG")).Distinct(), 0)
}
