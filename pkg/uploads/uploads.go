package uploads

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Store persists uploaded blobs under a root directory and hands back
// static-servable paths. Stored names never collide: they combine a
// millisecond timestamp with a random fragment, keeping the original
// extension only.
type Store struct {
	Root string
}

// PublicPrefix is the URL prefix the router serves Root under.
const PublicPrefix = "/uploads"

type SavedFile struct {
	StoredName   string // name on disk
	OriginalName string // client-declared name, display only
	Path         string // public path under /uploads
	Size         int64
}

func NewStore(root string) *Store {
	return &Store{Root: root}
}

// Save writes the uploaded file into Root/subdir. Directory creation is
// idempotent. The file hits disk before any database reference is written;
// an orphaned file after a failed DB write is tolerated garbage.
func (s *Store) Save(c *gin.Context, subdir string, fh *multipart.FileHeader) (*SavedFile, error) {
	dir := filepath.Join(s.Root, filepath.FromSlash(subdir))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	stored := storedName(fh.Filename)
	if err := c.SaveUploadedFile(fh, filepath.Join(dir, stored)); err != nil {
		return nil, err
	}

	return &SavedFile{
		StoredName:   stored,
		OriginalName: fh.Filename,
		Path:         PublicPrefix + "/" + subdir + "/" + stored,
		Size:         fh.Size,
	}, nil
}

func storedName(original string) string {
	ext := filepath.Ext(original)
	suffix := uuid.NewString()[:8]
	return fmt.Sprintf("%d_%s%s", time.Now().UnixMilli(), suffix, ext)
}
