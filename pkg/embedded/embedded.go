package embedded

import (
	_ "embed"
)

// StagesYAML is the default stage table.
//
//go:embed data/stages.yaml
var StagesYAML []byte
