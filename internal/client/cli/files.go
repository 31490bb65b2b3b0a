package cli

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"

	"github.com/dmitrijs2005/attachkeeper/internal/client/models"
)

// ReadFiles loads paths in order. The content type comes from the file
// extension, falling back to sniffing the content.
func ReadFiles(paths []string) ([]models.File, error) {
	files := make([]models.File, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		files = append(files, models.File{
			Name:        filepath.Base(p),
			ContentType: contentType(p, data),
			Data:        data,
		})
	}
	return files, nil
}

func contentType(path string, data []byte) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	return mimetype.Detect(data).String()
}
