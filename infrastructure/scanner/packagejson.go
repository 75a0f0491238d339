package scanner

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/TheForsakenSpirit/node-cache-builder/domain"
)

// manifestFile is the slice of package.json this tool cares about, with
// both dependency mappings kept in declaration order.
type manifestFile struct {
	Name            string
	Version         string
	Dependencies    []domain.Declaration
	DevDependencies []domain.Declaration
}

// parseManifest decodes a package.json while preserving the declaration
// order of the dependency mappings. Decoding into a map would lose it, so
// the mappings are read through the token stream instead.
func parseManifest(data []byte) (*manifestFile, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected a top-level object, got %v", tok)
	}

	manifest := &manifestFile{}
	for dec.More() {
		keyTok, keyErr := dec.Token()
		if keyErr != nil {
			return nil, fmt.Errorf("invalid JSON: %w", keyErr)
		}
		key, _ := keyTok.(string)

		switch key {
		case "name":
			if decodeErr := dec.Decode(&manifest.Name); decodeErr != nil {
				return nil, fmt.Errorf("invalid name field: %w", decodeErr)
			}
		case "version":
			if decodeErr := dec.Decode(&manifest.Version); decodeErr != nil {
				return nil, fmt.Errorf("invalid version field: %w", decodeErr)
			}
		case "dependencies":
			decls, declErr := parseDeclarations(dec)
			if declErr != nil {
				return nil, fmt.Errorf("invalid dependencies mapping: %w", declErr)
			}
			manifest.Dependencies = decls
		case "devDependencies":
			decls, declErr := parseDeclarations(dec)
			if declErr != nil {
				return nil, fmt.Errorf("invalid devDependencies mapping: %w", declErr)
			}
			manifest.DevDependencies = decls
		default:
			var skip json.RawMessage
			if decodeErr := dec.Decode(&skip); decodeErr != nil {
				return nil, fmt.Errorf("invalid JSON: %w", decodeErr)
			}
		}
	}

	return manifest, nil
}

// parseDeclarations reads one {"name": "specifier", ...} mapping in order.
// npm treats a repeated name as last-wins, so a duplicate key replaces the
// specifier while keeping the first position.
func parseDeclarations(dec *json.Decoder) ([]domain.Declaration, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if tok == nil { // "dependencies": null
		return nil, nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected an object, got %v", tok)
	}

	var decls []domain.Declaration
	index := make(map[string]int)
	for dec.More() {
		keyTok, keyErr := dec.Token()
		if keyErr != nil {
			return nil, keyErr
		}
		name, _ := keyTok.(string)

		var specifier string
		if decodeErr := dec.Decode(&specifier); decodeErr != nil {
			return nil, fmt.Errorf("specifier for %q is not a string: %w", name, decodeErr)
		}

		if at, seen := index[name]; seen {
			decls[at].Specifier = specifier
			continue
		}
		index[name] = len(decls)
		decls = append(decls, domain.Declaration{Name: name, Specifier: specifier})
	}

	if _, closeErr := dec.Token(); closeErr != nil {
		return nil, closeErr
	}
	return decls, nil
}
