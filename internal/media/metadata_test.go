package media

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2/v2"
)

func TestTitleFallsBackToFileName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Some Song.wav")
	if err := os.WriteFile(path, []byte("RIFF"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := Title(path); got != "Some Song" {
		t.Fatalf("expected file name title, got %q", got)
	}
}

func TestTitleReadsID3Tag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "track.mp3")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatalf("id3v2.Open: %v", err)
	}
	tag.SetTitle("Blue Monday")
	tag.SetArtist("New Order")
	if err := tag.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	tag.Close()

	if got := Title(path); got != "New Order - Blue Monday" {
		t.Fatalf("expected tag title, got %q", got)
	}
}
