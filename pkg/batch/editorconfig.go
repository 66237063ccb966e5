package batch

import (
	"bytes"
	"os"
	"path"
	"strings"

	"github.com/editorconfig/editorconfig-core-go/v2"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

// FinalNewline resolves insert_final_newline for p from the .editorconfig
// files above it on fs. Nil means the property is unset.
func FinalNewline(fs afero.Fs, p string) (*bool, error) {
	var chain []string // innermost first
	var configs []*editorconfig.Editorconfig

	for _, dir := range parentDirs(p) {
		file := path.Join(dir, editorconfig.ConfigNameDefault)
		data, err := afero.ReadFile(fs, file)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, errors.Errorf("reading %s: %w", file, err)
		}
		ec, err := editorconfig.Parse(bytes.NewReader(data))
		if err != nil {
			return nil, errors.Errorf("parsing %s: %w", file, err)
		}
		chain = append(chain, dir)
		configs = append(configs, ec)
		if ec.Root {
			break
		}
	}

	var rule *bool
	for i := len(configs) - 1; i >= 0; i-- {
		rel := strings.TrimPrefix(strings.TrimPrefix(p, chain[i]), "/")
		if chain[i] == "." {
			rel = p
		}
		def, err := configs[i].GetDefinitionForFilename(rel)
		if err != nil {
			return nil, errors.Errorf("matching %s: %w", p, err)
		}
		if def.InsertFinalNewline != nil {
			rule = def.InsertFinalNewline
		} else if v, ok := def.Raw["insert_final_newline"]; ok {
			b := strings.EqualFold(v, "true")
			rule = &b
		}
	}
	return rule, nil
}
