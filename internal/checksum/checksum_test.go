package checksum

import "testing"

func TestSum_Stable(t *testing.T) {
	if Sum([]byte("a")) != Sum([]byte("a")) {
		t.Error("same input should give same sum")
	}
	if Sum([]byte("a")) == Sum([]byte("b")) {
		t.Error("different input should give different sums")
	}
}

func TestDigest_OrderIndependent(t *testing.T) {
	a := map[string]string{"x.md": "1", "y.md": "2"}
	b := map[string]string{"y.md": "2", "x.md": "1"}
	if Digest(a) != Digest(b) {
		t.Error("digest should not depend on map order")
	}
	c := map[string]string{"x.md": "1", "y.md": "3"}
	if Digest(a) == Digest(c) {
		t.Error("changed checksum should change digest")
	}
}
