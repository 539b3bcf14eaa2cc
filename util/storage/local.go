package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Local writes uploads under Dir and serves them from BaseURL + "/uploads/".
type Local struct {
	Dir     string
	BaseURL string
}

func NewLocal(dir, baseURL string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create upload dir")
	}
	return &Local{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (l *Local) Save(_ context.Context, filename string, r io.Reader) (string, error) {
	name := fmt.Sprintf("%s%s", uuid.NewString(), strings.ToLower(filepath.Ext(filename)))

	f, err := os.Create(filepath.Join(l.Dir, name))
	if err != nil {
		return "", errors.Wrap(err, "create upload file")
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		_ = os.Remove(f.Name())
		return "", errors.Wrap(err, "write upload file")
	}
	return l.BaseURL + "/uploads/" + name, nil
}
