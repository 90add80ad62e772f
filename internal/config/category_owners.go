package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultCategoryOwners routes concern categories to owner employee ids when
// no map file is configured.
var DefaultCategoryOwners = map[string]string{
	"Training Related":                      "E010",
	"Critical Intervention - Cletus":        "E011",
	"MIS Related":                           "E012",
	"Quality Related":                       "E014",
	"HR Related":                            "E013",
	"Leave Request":                         "E013",
	"PF Related Issue":                      "E013",
	"PF Related Issues":                     "E013",
	"Bank Account Issue":                    "E013",
	"Request a call Back":                   "E013",
	"Salary Message not received":           "E013",
	"Salary Not Received":                   "E013",
	"Shift Manager / Kitchen Manager Issue": "E013",
	"Accommodation Issue":                   "E013",
	"Salary is incorrect":                   "E013",
	"Request - Salary Advance":              "E013",
	"Co-Worker Issue":                       "E013",
}

type categoryOwnerFile struct {
	Owners []struct {
		EmployeeID string   `yaml:"employee_id"`
		Categories []string `yaml:"categories"`
	} `yaml:"owners"`
}

// LoadCategoryOwners reads the category map from path. An empty path returns
// a copy of DefaultCategoryOwners.
func LoadCategoryOwners(path string) (map[string]string, error) {
	if path == "" {
		out := make(map[string]string, len(DefaultCategoryOwners))
		for k, v := range DefaultCategoryOwners {
			out[k] = v
		}
		return out, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read category owner map: %w", err)
	}
	return ParseCategoryOwners(raw)
}

// ParseCategoryOwners decodes the YAML category map. A category listed under
// two owners is rejected.
func ParseCategoryOwners(raw []byte) (map[string]string, error) {
	var file categoryOwnerFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse category owner map: %w", err)
	}

	out := map[string]string{}
	for _, owner := range file.Owners {
		employeeID := strings.TrimSpace(owner.EmployeeID)
		if employeeID == "" {
			return nil, fmt.Errorf("category owner map: owner without employee_id")
		}
		for _, category := range owner.Categories {
			category = strings.TrimSpace(category)
			if category == "" {
				continue
			}
			if existing, ok := out[category]; ok && existing != employeeID {
				return nil, fmt.Errorf("category owner map: %q mapped to both %s and %s", category, existing, employeeID)
			}
			out[category] = employeeID
		}
	}
	return out, nil
}
