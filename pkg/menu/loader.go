package menu

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads a menu file. The decoder is chosen by extension: .xml for the
// restaurant's menu.xml layout, .yaml/.yml for the flat document.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read menu %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml":
		return ParseXML(data)
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return nil, &CatalogError{Reason: fmt.Sprintf("unsupported menu format %q", filepath.Ext(path))}
	}
}

type xmlMenu struct {
	XMLName    xml.Name      `xml:"menu"`
	Store      string        `xml:"store,attr"`
	Categories []xmlCategory `xml:"category"`
}

type xmlCategory struct {
	Name  string    `xml:"name,attr"`
	Items []xmlItem `xml:"item"`
}

type xmlItem struct {
	Name   string     `xml:"name"`
	Price  string     `xml:"price"`
	Extras *xmlExtras `xml:"extras"`
}

type xmlExtras struct {
	Extras []xmlExtra `xml:"extra"`
}

type xmlExtra struct {
	Name  string `xml:"name,attr"`
	Price string `xml:"price,attr"`
}

// ParseXML decodes <menu store><category name><item><name/><price/><extras>
// <extra name price/></extras></item></category></menu>. An item carrying at
// least one <extra> is extras-eligible.
func ParseXML(data []byte) (*Catalog, error) {
	var doc xmlMenu
	if err := xml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		return nil, &CatalogError{Reason: fmt.Sprintf("malformed xml: %v", err)}
	}

	var items []ItemSpec
	extras := make(map[string][]ExtraSpec)
	var eligible []string

	for _, cat := range doc.Categories {
		for _, it := range cat.Items {
			items = append(items, ItemSpec{Name: it.Name, Price: it.Price, Category: cat.Name})
			if it.Extras == nil || len(it.Extras.Extras) == 0 {
				continue
			}
			name := strings.TrimSpace(it.Name)
			eligible = append(eligible, name)
			for _, ex := range it.Extras.Extras {
				extras[name] = append(extras[name], ExtraSpec{Name: ex.Name, Price: ex.Price})
			}
		}
	}

	return New(doc.Store, items, extras, eligible)
}

type yamlMenu struct {
	Store string `yaml:"store"`
	Items []struct {
		Name     string `yaml:"name"`
		Price    string `yaml:"price"`
		Category string `yaml:"category"`
	} `yaml:"items"`
	Extras map[string][]struct {
		Name  string `yaml:"name"`
		Price string `yaml:"price"`
	} `yaml:"extras"`
	ExtrasEligible []string `yaml:"extras_eligible"`
}

// ParseYAML decodes the flat menu document: items, extras keyed by item and
// an explicit extras_eligible list.
func ParseYAML(data []byte) (*Catalog, error) {
	var doc yamlMenu
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &CatalogError{Reason: fmt.Sprintf("malformed yaml: %v", err)}
	}

	items := make([]ItemSpec, 0, len(doc.Items))
	for _, it := range doc.Items {
		items = append(items, ItemSpec{Name: it.Name, Price: it.Price, Category: it.Category})
	}

	extras := make(map[string][]ExtraSpec, len(doc.Extras))
	for item, list := range doc.Extras {
		for _, ex := range list {
			extras[item] = append(extras[item], ExtraSpec{Name: ex.Name, Price: ex.Price})
		}
	}

	return New(doc.Store, items, extras, doc.ExtrasEligible)
}
