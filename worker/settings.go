package worker

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"FractalAnimator/misc"
	"FractalAnimator/rpc"
)

type Settings struct {
	Address            string `json:"address" yaml:"address"`
	Concurrency        int    `json:"concurrency" yaml:"concurrency"`
	CoordinatorAddress string `json:"coordinatorAddress" yaml:"coordinatorAddress"`
	Transport          string `json:"transport" yaml:"transport"`
	Verbosity          string `json:"verbosity" yaml:"verbosity"`
}

// LoadSettings reads a worker settings file, YAML for .yaml and .yml files and JSON otherwise.
func LoadSettings(settingsFile string) (Settings, error) {
	var s Settings
	fileBytes, err := misc.ReadFile(settingsFile)
	if err != nil {
		return s, err
	}
	if misc.IsYamlFile(settingsFile) {
		err = yaml.Unmarshal(fileBytes, &s)
	} else {
		err = json.Unmarshal(fileBytes, &s)
	}
	if err != nil {
		return s, fmt.Errorf("unable to parse %s - %w", settingsFile, err)
	}
	return s, s.Verify()
}

func (s *Settings) String() string {
	output := "\nWorker settings\n"
	output += fmt.Sprintf("Coordinator Address: %s (%s)\n", s.CoordinatorAddress, s.Transport)
	output += fmt.Sprintf("Concurrency: %d\n", s.Concurrency)
	return output
}

func (s *Settings) Verify() error {
	if s.Address == "" || s.CoordinatorAddress == "" {
		host, err := misc.GetLocalAddress()
		if err != nil {
			host = "127.0.0.1"
		}
		if s.Address == "" {
			s.Address = host
		}
		if s.CoordinatorAddress == "" {
			s.CoordinatorAddress = fmt.Sprintf("%s:%s", host, "51000")
		}
	}
	if s.Concurrency < 0 {
		return misc.NewConfigError("concurrency", "must be >= 0, got %d", s.Concurrency)
	}
	if s.Concurrency == 0 {
		s.Concurrency = 1
	}
	transport, err := rpc.ParseTransport(s.Transport)
	if err != nil {
		return err
	}
	s.Transport = transport
	verbosity, err := misc.ParseVerbosity(s.Verbosity)
	if err != nil {
		return err
	}
	s.Verbosity = verbosity
	return nil
}
