package embedding

import (
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// Kind selects an encoder implementation.
type Kind string

const (
	KindOllama  Kind = "ollama"
	KindHTTP    Kind = "http"
	KindHashing Kind = "hashing"
)

// Kinds lists the supported encoder kinds.
var Kinds = []Kind{KindOllama, KindHTTP, KindHashing}

// KindNames returns [Kinds] as a comma separated list.
func KindNames() string {
	names := make([]string, len(Kinds))
	for i, k := range Kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

// Create builds an encoder of the given kind. model overrides any model in
// options; options are decoded per kind.
func Create(kind Kind, model string, options map[string]any) (Encoder, error) {
	switch kind {
	case KindOllama, "":
		var cfg OllamaConfig
		if err := decodeOptions(options, &cfg); err != nil {
			return nil, fmt.Errorf("ollama encoder options: %w", err)
		}
		if model != "" {
			cfg.Model = model
		}
		return NewOllamaEncoder(cfg), nil
	case KindHTTP:
		var cfg HTTPConfig
		if err := decodeOptions(options, &cfg); err != nil {
			return nil, fmt.Errorf("http encoder options: %w", err)
		}
		if model != "" {
			cfg.Model = model
		}
		return NewHTTPEncoder(cfg)
	case KindHashing:
		var cfg HashingConfig
		if err := decodeOptions(options, &cfg); err != nil {
			return nil, fmt.Errorf("hashing encoder options: %w", err)
		}
		return NewHashingEncoder(cfg), nil
	default:
		return nil, fmt.Errorf("'%s' is not a valid encoder kind (want one of %s)", kind, KindNames())
	}
}

func decodeOptions(options map[string]any, out any) error {
	if len(options) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(options)
}
