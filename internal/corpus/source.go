package corpus

import (
	"context"
	"os"
	"path"
	"path/filepath"

	"github.com/colinmarc/hdfs/v2"
)

// Entry is one directory entry returned by a Source.
type Entry struct {
	Name  string
	IsDir bool
}

// Source is a read-only file tree holding the review files.
type Source interface {
	ReadDir(ctx context.Context, dir string) ([]Entry, error)
	ReadFile(ctx context.Context, name string) ([]byte, error)
	Join(elem ...string) string
	Close() error
}

// LocalSource reads from the local filesystem.
type LocalSource struct{}

// NewLocalSource returns a Source backed by the os filesystem.
func NewLocalSource() *LocalSource { return &LocalSource{} }

// ReadDir lists dir.
func (LocalSource) ReadDir(ctx context.Context, dir string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	des, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, len(des))
	for i, de := range des {
		out[i] = Entry{Name: de.Name(), IsDir: de.IsDir()}
	}
	return out, nil
}

// ReadFile returns the contents of name.
func (LocalSource) ReadFile(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(name)
}

// Join joins path elements with the OS separator.
func (LocalSource) Join(elem ...string) string { return filepath.Join(elem...) }

// Close is a no-op.
func (LocalSource) Close() error { return nil }

// HDFSSource reads from an HDFS namenode.
type HDFSSource struct {
	client *hdfs.Client
}

// NewHDFSSource connects to namenode as user. An empty user falls back to
// the HADOOP_USER_NAME environment or the OS user.
func NewHDFSSource(namenode, user string) (*HDFSSource, error) {
	client, err := hdfs.NewClient(hdfs.ClientOptions{
		Addresses: []string{namenode},
		User:      user,
	})
	if err != nil {
		return nil, err
	}
	return &HDFSSource{client: client}, nil
}

// ReadDir lists dir on the namenode.
func (s *HDFSSource) ReadDir(ctx context.Context, dir string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	infos, err := s.client.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, len(infos))
	for i, fi := range infos {
		out[i] = Entry{Name: fi.Name(), IsDir: fi.IsDir()}
	}
	return out, nil
}

// ReadFile returns the contents of name.
func (s *HDFSSource) ReadFile(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.client.ReadFile(name)
}

// Join uses forward slashes whatever the host OS.
func (s *HDFSSource) Join(elem ...string) string { return path.Join(elem...) }

// Close releases the namenode connection.
func (s *HDFSSource) Close() error { return s.client.Close() }
