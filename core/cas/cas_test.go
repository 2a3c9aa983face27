package cas

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/zeebo/blake3"
)

func TestSum(t *testing.T) {
	want := blake3.Sum256([]byte("Die Bank ist alt."))
	if got := Sum("Die Bank ist alt."); got != Fingerprint(want) {
		t.Errorf("Sum() = %s", got)
	}
	if Sum("a") == Sum("b") {
		t.Error("different texts should not collide")
	}
	if SumKeyed("rules/de", "text") == SumKeyed("rules/en", "text") {
		t.Error("different keys should not collide")
	}
	if SumKeyed("ab", "c") == SumKeyed("a", "bc") {
		t.Error("key/text boundary should be unambiguous")
	}
}

func TestParseFingerprint(t *testing.T) {
	fp := Sum("Bank")
	parsed, err := ParseFingerprint(fp.Hex())
	if err != nil {
		t.Fatal(err)
	}
	if parsed != fp {
		t.Errorf("ParseFingerprint(Hex()) = %s, want %s", parsed, fp)
	}

	for _, bad := range []string{"", "xyz", fp.Hex()[:63], "G" + fp.Hex()[1:]} {
		if _, err := ParseFingerprint(bad); !errors.Is(err, ErrInvalidHash) {
			t.Errorf("ParseFingerprint(%q) error = %v, want ErrInvalidHash", bad, err)
		}
	}
}

func TestAssignSplit(t *testing.T) {
	counts := map[Split]int{}
	const n = 20000
	for i := 0; i < n; i++ {
		fp := Sum(fmt.Sprintf("paragraph %d", i))
		u := fp.Unit()
		if u < 0 || u >= 1 {
			t.Fatalf("Unit() = %v out of range", u)
		}
		split := AssignSplit(fp, DefaultTestSetSizes)
		if again := AssignSplit(fp, DefaultTestSetSizes); again != split {
			t.Fatal("AssignSplit is not deterministic")
		}
		counts[split]++
	}

	for split, want := range map[Split]float64{Train: 0.70, Dev: 0.15, Test: 0.15} {
		got := float64(counts[split]) / n
		if math.Abs(got-want) > 0.02 {
			t.Errorf("%s fraction = %.3f, want about %.2f", split, got, want)
		}
	}

	if AssignSplit(Sum("x"), nil) != Train {
		t.Error("no test sets should put everything in train")
	}
}

func TestValidateSizes(t *testing.T) {
	tests := []struct {
		sizes   []float64
		wantErr bool
	}{
		{nil, false},
		{[]float64{0.15, 0.15}, false},
		{[]float64{0.1}, false},
		{[]float64{-0.1, 0.2}, true},
		{[]float64{0.5, 0.5}, true},
		{[]float64{0.1, 0.1, 0.1}, true},
		{[]float64{math.NaN()}, true},
	}
	for _, tt := range tests {
		if err := ValidateSizes(tt.sizes); (err != nil) != tt.wantErr {
			t.Errorf("ValidateSizes(%v) error = %v, wantErr %v", tt.sizes, err, tt.wantErr)
		}
	}
}

func TestStore(t *testing.T) {
	root := t.TempDir()
	store, err := NewStore(root)
	if err != nil {
		t.Fatal(err)
	}

	key := SumKeyed("rules/de", "Die Bank ist alt.")
	if store.Exists(key) {
		t.Fatal("empty store reports blob")
	}
	if _, err := store.Get(key); !errors.Is(err, ErrBlobNotFound) {
		t.Errorf("Get() error = %v, want ErrBlobNotFound", err)
	}

	if err := store.Put(key, []byte(`[{"value":"Die"}]`)); err != nil {
		t.Fatal(err)
	}
	if err := store.Put(key, []byte("ignored")); err != nil {
		t.Fatal(err)
	}

	data, err := store.Get(key)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `[{"value":"Die"}]` {
		t.Errorf("Get() = %q; existing blob must not be overwritten", data)
	}

	h := key.Hex()
	if _, err := os.Stat(filepath.Join(root, "blobs", "blake3", h[:2], h)); err != nil {
		t.Errorf("blob not at expected path: %v", err)
	}
}

func TestStore_WriteFailures(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		setup func() func()
	}{
		{"write", func() func() {
			orig := tempFileWrite
			tempFileWrite = func(*os.File, []byte) (int, error) { return 0, errors.New("disk full") }
			return func() { tempFileWrite = orig }
		}},
		{"rename", func() func() {
			orig := osRename
			osRename = func(string, string) error { return errors.New("rename failed") }
			return func() { osRename = orig }
		}},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			restore := tt.setup()
			defer restore()

			key := Sum(fmt.Sprintf("blob %d", i))
			if err := store.Put(key, []byte("data")); err == nil {
				t.Fatal("Put() should fail")
			}
			if store.Exists(key) {
				t.Error("failed Put left a blob behind")
			}
		})
	}
}
