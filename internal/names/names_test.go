package names

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitFullName(t *testing.T) {
	tests := []struct {
		name    string
		full    string
		want    Name
		wantErr bool
	}{
		{"two tokens", "Ava Li", Name{"Ava", "Li"}, false},
		{"surrounding space", "  Noah   Diaz ", Name{"Noah", "Diaz"}, false},
		{"title shifts fields", "Dr. John Smith", Name{"Dr.", "John Smith"}, false},
		{"suffix stays in last", "John Smith Jr.", Name{"John", "Smith Jr."}, false},
		{"tab separated", "Lena\tOrtiz", Name{"Lena", "Ortiz"}, false},
		{"single token", "Cher", Name{}, true},
		{"empty", "", Name{}, true},
		{"blank", "   ", Name{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SplitFullName(tt.full)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrMalformedName)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFullNameFunc(t *testing.T) {
	gen := FullNameFunc(func() string { return "Mrs. Jane Doe" })
	n, err := gen.Name(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Mrs.", n.First)
	assert.Equal(t, "Jane Doe", n.Last)

	_, err = FullNameFunc(func() string { return "Madonna" }).Name(context.Background())
	assert.ErrorIs(t, err, ErrMalformedName)
}

func TestCatalogNamesAreNonEmpty(t *testing.T) {
	c := NewCatalog(0)
	for range 200 {
		n, err := c.Name(context.Background())
		require.NoError(t, err)
		assert.NotEmpty(t, n.First)
		assert.NotEmpty(t, n.Last)
	}
}

func TestCatalogSeedIsReproducible(t *testing.T) {
	a, b := NewCatalog(42), NewCatalog(42)
	for range 20 {
		na, _ := a.Name(context.Background())
		nb, _ := b.Name(context.Background())
		assert.Equal(t, na, nb)
	}
}

type fakeLister struct {
	replies [][]string
	calls   int
	asked   []int
	err     error
}

func (f *fakeLister) ListNames(_ context.Context, n int) ([]string, error) {
	f.asked = append(f.asked, n)
	if f.err != nil {
		return nil, f.err
	}
	reply := f.replies[f.calls%len(f.replies)]
	f.calls++
	return reply, nil
}

func TestLLMGeneratorBuffersBatch(t *testing.T) {
	fl := &fakeLister{replies: [][]string{{"Ava Li", "Noah Diaz", "Plato", "Lena Ortiz"}}}
	gen := NewLLMGenerator(fl, 3)

	var got []Name
	for range 4 {
		n, err := gen.Name(context.Background())
		require.NoError(t, err)
		got = append(got, n)
	}

	assert.Equal(t, []Name{{"Ava", "Li"}, {"Noah", "Diaz"}, {"Lena", "Ortiz"}, {"Ava", "Li"}}, got)
	assert.Equal(t, 2, fl.calls, "second batch fetched once the first was drained")
	assert.Equal(t, []int{3, 3}, fl.asked)
}

func TestLLMGeneratorErrors(t *testing.T) {
	_, err := NewLLMGenerator(&fakeLister{err: errors.New("boom")}, 0).Name(context.Background())
	assert.ErrorContains(t, err, "boom")

	_, err = NewLLMGenerator(&fakeLister{replies: [][]string{{"Unavailable", "42."}}}, 0).Name(context.Background())
	assert.ErrorContains(t, err, "no usable names")

	_, err = NewLLMGenerator(nil, 0).Name(context.Background())
	assert.Error(t, err)
}
