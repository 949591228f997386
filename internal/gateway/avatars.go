package gateway

import (
	"context"       // Cancellation
	"io"            // Streaming copy
	"os"            // Files
	"path/filepath" // Safe joins
	"strings"       // URL building

	"campus_wallet/internal/domain" // Error taxonomy
)

// AvatarStore is the avatar bucket, kept on local disk and served statically
type AvatarStore struct {
	dir     string // Bucket root
	baseURL string // Public URL prefix of the bucket
}

// NewAvatarStore creates the bucket directory if needed
func NewAvatarStore(dir, baseURL string) (*AvatarStore, error) {
	if err := os.MkdirAll(filepath.Join(dir, "public"), 0o755); err != nil {
		return nil, err
	}
	return &AvatarStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Dir returns the bucket root for static serving
func (a *AvatarStore) Dir() string {
	return a.dir
}

// Put writes public/<name>, replacing any previous object, and returns its public URL
func (a *AvatarStore) Put(ctx context.Context, name string, r io.Reader) (string, error) {
	name = filepath.Base(filepath.Clean("/" + name))
	if name == "/" || name == "." {
		return "", domain.Validation("invalid file name")
	}
	if err := ctx.Err(); err != nil {
		return "", translate(err, "avatar")
	}
	tmp, err := os.CreateTemp(filepath.Join(a.dir, "public"), ".upload-*")
	if err != nil {
		return "", domain.Gateway(err.Error())
	}
	defer os.Remove(tmp.Name()) // No-op after a successful rename
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", domain.Gateway(err.Error())
	}
	if err := tmp.Close(); err != nil {
		return "", domain.Gateway(err.Error())
	}
	if err := os.Rename(tmp.Name(), filepath.Join(a.dir, "public", name)); err != nil {
		return "", domain.Gateway(err.Error())
	}
	return a.baseURL + "/avatars/public/" + name, nil
}
