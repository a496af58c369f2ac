// 指示: miu200521358
package model

import "testing"

func TestTinkerWarningIDsAreNonEmptyAndUnique(t *testing.T) {
	seen := map[string]struct{}{}
	for _, id := range AllTinkerWarningIDs() {
		if id == "" {
			t.Fatalf("warning id should not be empty")
		}
		if _, exists := seen[id]; exists {
			t.Fatalf("warning id should be unique: %s", id)
		}
		seen[id] = struct{}{}
	}
	if len(seen) != 4 {
		t.Fatalf("warning id count mismatch: got=%d want=%d", len(seen), 4)
	}
}
