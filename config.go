package schematic

import (
	"os"

	"github.com/calebcase/oops"
	"sigs.k8s.io/yaml"

	"github.com/calebcase/schematic/value"
)

// LoadConfig reads a decode configuration from the YAML (or JSON) file at
// path. Unknown keys are rejected. Missing values take their defaults.
//
//	tempDirectory: /var/tmp
//	spillThresholdBytes: 1048576
//	mapSpilled: true
func LoadConfig(path string) (cfg value.Config, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, Error.Wrap(oops.Trace(err))
	}

	err = yaml.UnmarshalStrict(data, &cfg)
	if err != nil {
		return cfg, Error.Wrap(oops.Trace(err))
	}

	return cfg.WithDefaults(), nil
}
