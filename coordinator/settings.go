package coordinator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"FractalAnimator/animation"
	"FractalAnimator/misc"
	"FractalAnimator/rpc"
	"FractalAnimator/sink"
)

type Settings struct {
	animation.Settings `yaml:",inline"`

	Concurrency     int    `json:"concurrency" yaml:"concurrency"`
	Console         bool   `json:"console" yaml:"console"`
	ContinueOnError bool   `json:"continueOnError" yaml:"continueOnError"`
	ImageFormat     string `json:"imageFormat" yaml:"imageFormat"`
	ProgressAddress string `json:"progressAddress" yaml:"progressAddress"`
	RunName         string `json:"runName" yaml:"runName"`
	SavePath        string `json:"savePath" yaml:"savePath"`
	ServerAddress   string `json:"serverAddress" yaml:"serverAddress"`
	StartFrame      int    `json:"startFrame" yaml:"startFrame"`
	Transport       string `json:"transport" yaml:"transport"`
	Verbosity       string `json:"verbosity" yaml:"verbosity"`

	file string
}

// LoadSettings reads a settings file, YAML when the extension is .yaml or .yml and JSON otherwise,
// and verifies it.
func LoadSettings(settingsFile string) (Settings, error) {
	s := Settings{file: settingsFile}
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
	if err := s.Verify(); err != nil {
		return s, err
	}
	return s, nil
}

// Marshal encodes the settings in the format of the file they were loaded from.
func (s *Settings) Marshal() ([]byte, error) {
	if misc.IsYamlFile(s.file) {
		return yaml.Marshal(s)
	}
	return json.MarshalIndent(s, "", "  ")
}

// CopyName is the file name of the settings copy kept in the run directory.
func (s *Settings) CopyName() string {
	if s.file == "" {
		return "settings.json"
	}
	return filepath.Base(s.file)
}

func (s *Settings) RunDir() string {
	return filepath.Join(s.SavePath, s.RunName)
}

func (s *Settings) String() string {
	output := "\nCoordinator settings\n"
	output += fmt.Sprintf("Run: %s\n", s.RunDir())
	output += fmt.Sprintf("Image Format: %s\n", s.ImageFormat)
	output += fmt.Sprintf("Concurrency: %d\n", s.Concurrency)
	output += fmt.Sprintf("Start Frame: %d\n", s.StartFrame)
	output += fmt.Sprintf("My Address: %s (%s)", s.ServerAddress, s.Transport)
	output += s.Settings.String()
	return output
}

func (s *Settings) Verify() error {
	if err := s.Settings.Verify(); err != nil {
		return err
	}
	if s.RunName == "" {
		s.RunName = "run_" + time.Now().Format("2006_01_02-03_04_05")
	}
	if s.SavePath == "" {
		s.SavePath, _ = os.Getwd()
	}
	if _, err := sink.ParseFormat(s.ImageFormat); err != nil {
		return err
	}
	if s.ImageFormat == "" {
		s.ImageFormat = "png"
	}
	if s.Concurrency < 0 {
		return misc.NewConfigError("concurrency", "must be >= 0, got %d", s.Concurrency)
	}
	if s.Concurrency == 0 {
		s.Concurrency = 1
	}
	if s.StartFrame < 0 {
		return misc.NewConfigError("startFrame", "must be >= 0, got %d", s.StartFrame)
	}
	transport, err := rpc.ParseTransport(s.Transport)
	if err != nil {
		return err
	}
	s.Transport = transport
	if s.ServerAddress == "" {
		host, err := misc.GetLocalAddress()
		if err != nil {
			host = "127.0.0.1"
		}
		s.ServerAddress = fmt.Sprintf("%s:%s", host, "51000")
	}
	verbosity, err := misc.ParseVerbosity(s.Verbosity)
	if err != nil {
		return err
	}
	s.Verbosity = verbosity
	return nil
}

// FrameCount is the number of frames the run renders in total.
func (s *Settings) FrameCount() int {
	if s.Animation != nil {
		return s.Animation.FrameCount
	}
	if s.Mosaic != nil {
		return s.Mosaic.FrameCount
	}
	return 0
}
