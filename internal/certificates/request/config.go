package request

import "strings"

type Section struct {
	Name   string
	keys   []string
	values map[string]string
}

// Set assigns a value. A key keeps the position of its first insertion.
func (s *Section) Set(key, value string) {
	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
	}

	s.values[key] = value
}

func (s *Section) Get(key string) (string, bool) {
	value, ok := s.values[key]

	return value, ok
}

func (s *Section) Keys() []string {
	return append([]string{}, s.keys...)
}

// ConfigDocument is an ordered set of ordered key/value sections rendered in the
// OpenSSL configuration file format. The unnamed default section always comes first.
type ConfigDocument struct {
	sections []*Section
}

func NewConfigDocument() *ConfigDocument {
	return &ConfigDocument{sections: []*Section{newSection("")}}
}

func (d *ConfigDocument) Default() *Section {
	return d.sections[0]
}

// Section returns the named section, appending an empty one if it does not exist yet.
func (d *ConfigDocument) Section(name string) *Section {
	for _, section := range d.sections {
		if section.Name == name {
			return section
		}
	}

	section := newSection(name)
	d.sections = append(d.sections, section)

	return section
}

func (d *ConfigDocument) SectionNames() []string {
	names := []string{}

	for _, section := range d.sections {
		names = append(names, section.Name)
	}

	return names
}

func (d *ConfigDocument) Generate() string {
	var builder strings.Builder

	for _, section := range d.sections {
		if section.Name != "" {
			builder.WriteString("[ " + section.Name + " ]\n")
		}

		for _, key := range section.keys {
			builder.WriteString(key + " = " + section.values[key] + "\n")
		}

		builder.WriteString("\n")
	}

	return builder.String()
}

func newSection(name string) *Section {
	return &Section{Name: name, values: make(map[string]string)}
}
