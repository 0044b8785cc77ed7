package ecosagile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Credentials identify an EcosAgile instance and API user.
type Credentials struct {
	Endpoint     string `yaml:"endpoint"`
	InstanceCode string `yaml:"instance_code"`
	UserID       string `yaml:"userid"`
	Password     string `yaml:"password"`
	ClientID     string `yaml:"client_id"`
}

// Validate lists every missing field.
func (c Credentials) Validate() error {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"endpoint", c.Endpoint},
		{"instanceCode", c.InstanceCode},
		{"userid", c.UserID},
		{"password", c.Password},
		{"clientId", c.ClientID},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w. Missing: %s", ErrIncompleteCredentials, strings.Join(missing, ", "))
	}
	return nil
}

// SaveCredentials writes c to path, readable by the owner only.
func SaveCredentials(path string, c Credentials) error {
	if err := c.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}

// LoadCredentials reads credentials saved by SaveCredentials.
func LoadCredentials(path string) (Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Credentials{}, fmt.Errorf("read credentials: %w", err)
	}
	var c Credentials
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Credentials{}, fmt.Errorf("parse credentials %s: %w", path, err)
	}
	return c, c.Validate()
}

func (c Credentials) apiURL() string {
	return strings.TrimRight(c.Endpoint, "/") + "/" + strings.Trim(c.InstanceCode, "/") + "/api.pm"
}
