package options

import (
	"encoding/json"

	"github.com/tailscale/hujson"

	"github.com/emberkv/ignite/pkg/errors"
	"github.com/emberkv/ignite/pkg/filesys"
)

// LoadFile reads a JWCC (JSON-with-comments-and-trailing-commas) config
// file at path and overlays it onto the package defaults. A missing file is
// not an error — callers typically treat the config file as optional,
// falling back to defaults and flags.
func LoadFile(path string) (Options, error) {
	o := NewDefaultOptions()

	ok, err := filesys.Exists(path)
	if err != nil {
		return o, errors.ClassifyFileOpenError(err, path, path)
	}
	if !ok {
		return o, nil
	}

	raw, err := filesys.ReadFile(path)
	if err != nil {
		return o, errors.ClassifyFileOpenError(err, path, path)
	}

	standard, err := hujson.Standardize(raw)
	if err != nil {
		return o, errors.NewValidationError(err, errors.ErrorCodeInvalidInput, "malformed configuration file").
			WithField("configFile").WithRule("jwcc_syntax").WithProvided(path)
	}

	if err := json.Unmarshal(standard, &o); err != nil {
		return o, errors.NewValidationError(err, errors.ErrorCodeInvalidInput, "configuration file does not match expected schema").
			WithField("configFile").WithRule("schema").WithProvided(path)
	}

	return o, nil
}
