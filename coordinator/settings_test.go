package coordinator

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"FractalAnimator/misc"
)

const jsonSettings = `{
  "runName": "zoom",
  "imageFormat": "tiff",
  "concurrency": 2,
  "palette": {"colors": ["#000000", "#ccb3ff", "#ff0000", "#000000"], "offset": -1},
  "raster": {"generation": "column", "superSampling": 2},
  "animation": {
    "center": {"re": -0.743643887037151, "im": 0.13182590420533},
    "frameCount": 300,
    "scaleStart": 3.5e-5,
    "scaleEnd": 1e-4,
    "maxIterations": 2000
  }
}`

const yamlSettings = `
runName: mosaic
console: true
transport: http
verbosity: minimal
palette:
  colors: ["0,0,0", "204,179,255", "255,0,0", "0,0,0"]
mosaic:
  gridSize: 31
  frameCount: 299
  zoomStart: 0.975
  zoomEnd: 0.0005
`

func writeSettings(t *testing.T, name string, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadSettingsJson(t *testing.T) {
	s, err := LoadSettings(writeSettings(t, "zoom.json", jsonSettings))
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if s.RunName != "zoom" || s.ImageFormat != "tiff" || s.Concurrency != 2 || s.Transport != "tcp" {
		t.Errorf("unexpected settings: %s", s.String())
	}
	if s.Palette.Offset != -1 || s.Palette.Length != 256 || s.Raster.SuperSampling != 2 {
		t.Errorf("unexpected render settings: %+v %+v", s.Palette, s.Raster)
	}
	if s.Animation == nil || s.Animation.FrameCount != 300 || s.Animation.Width != 1920 {
		t.Fatalf("unexpected animation: %+v", s.Animation)
	}
	if s.FrameCount() != 300 || s.CopyName() != "zoom.json" {
		t.Errorf("FrameCount = %d, CopyName = %s", s.FrameCount(), s.CopyName())
	}
	if s.SavePath == "" || s.Verbosity != "normal" {
		t.Errorf("defaults not filled in: %q %q", s.SavePath, s.Verbosity)
	}
}

func TestLoadSettingsYaml(t *testing.T) {
	s, err := LoadSettings(writeSettings(t, "mosaic.yaml", yamlSettings))
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if s.Mosaic == nil || s.Animation != nil {
		t.Fatalf("expected a mosaic run")
	}
	if s.Mosaic.Kernel != "julia" || s.Mosaic.FrameCount != 299 || s.Mosaic.Width != 2160 {
		t.Errorf("unexpected mosaic: %+v", *s.Mosaic)
	}
	if !s.Console || s.Transport != "http" || s.Verbosity != "minimal" || s.Palette.MembershipColor != "255,255,255" {
		t.Errorf("unexpected settings: %s", s.String())
	}

	copied, err := s.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	again, err := LoadSettings(writeSettings(t, "again.yml", string(copied)))
	if err != nil {
		t.Fatalf("reloading the copy: %v", err)
	}
	if *again.Mosaic != *s.Mosaic || again.RunName != s.RunName {
		t.Errorf("copy does not reproduce the run")
	}
}

func TestLoadSettingsErrors(t *testing.T) {
	var configErr *misc.ConfigError
	tests := map[string]string{
		"no animation":     `{"runName": "x"}`,
		"two animations":   `{"animation": {}, "mosaic": {}}`,
		"bad format":       `{"imageFormat": "gif", "animation": {}}`,
		"bad concurrency":  `{"concurrency": -2, "animation": {}}`,
		"bad start":        `{"startFrame": -1, "animation": {}}`,
		"bad transport":    `{"transport": "carrier pigeon", "animation": {}}`,
		"bad verbosity":    `{"verbosity": "loud", "animation": {}}`,
		"bad frame count":  `{"animation": {"frameCount": -5}}`,
		"bad generation":   `{"raster": {"generation": "spiral"}, "animation": {}}`,
		"bad palette size": `{"palette": {"length": -1}, "animation": {}}`,
	}
	for name, contents := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadSettings(writeSettings(t, "settings.json", contents))
			if !errors.As(err, &configErr) {
				t.Errorf("expected a ConfigError, got %v", err)
			}
		})
	}

	if _, err := LoadSettings(writeSettings(t, "broken.json", `{"animation": `)); err == nil {
		t.Errorf("expected a parse error")
	}
	if _, err := LoadSettings(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Errorf("expected an error for a missing file")
	}
}
