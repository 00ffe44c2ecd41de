package storage

import (
	"io"
	"strings"
	"testing"
)

func TestFSStoreRoundTrip(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	key := SubmissionKey("file-1", "deck.pptx")
	if _, err := s.Put(key, strings.NewReader("payload")); err != nil {
		t.Fatalf("put: %v", err)
	}

	rc, err := s.Get(key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("got %q", data)
	}

	u, err := s.SignedURL(key)
	if err != nil || !strings.HasPrefix(u, "file://") {
		t.Errorf("signed url = %q, %v", u, err)
	}

	if _, err := s.Put("", strings.NewReader("x")); err == nil {
		t.Error("empty key should fail")
	}
}

func TestSubmissionKeyStripsDirectories(t *testing.T) {
	key := SubmissionKey("f1", "../../etc/passwd")
	if strings.Contains(key, "..") {
		t.Errorf("key %q keeps traversal segments", key)
	}
}
