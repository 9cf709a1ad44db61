package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnauagrupocobra-tech/geostamp"
	"github.com/arnauagrupocobra-tech/geostamp/exif"
	"github.com/arnauagrupocobra-tech/geostamp/profile"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	d := New()
	assert.Equal(t, d.Port, cfg.Port)
	assert.Equal(t, "0.0.0.0:5000", cfg.Addr())
	assert.Equal(t, "+01:00", cfg.Offset)
	assert.Equal(t, 2.0, cfg.Radius)
	assert.Equal(t, 95, cfg.Quality)
	assert.Equal(t, profile.DefaultName, cfg.Profile)
	assert.Equal(t, "imagen_", cfg.FilenamePrefix)
	assert.Equal(t, int64(32<<20), cfg.MaxBodyBytes)
	assert.Equal(t, int64(geostamp.DefaultMaxPixels), cfg.MaxPixels)
	assert.False(t, cfg.AutoOrient)
	assert.Empty(t, cfg.Profiles)
	assert.False(t, cfg.Archive.Enabled())

	opt, err := cfg.StamperOptions()
	require.NoError(t, err)
	assert.Equal(t, "Galaxy A54 5G", opt.Profile.Model)
	assert.Equal(t, "+01:00", opt.Zone.String())
}

const testYAML = `
port: 8080
offset: "-05:00"
auto_orient: true
profile: test-pixel
profiles:
  - name: test-pixel
    make: Google
    model: Pixel 7
    software: TD1A.220804.031
    exposure_time: "1/120"
    f_number: "185/100"
    iso: 50
    exposure_program: 2
    exif_version: "0232"
    focal_length: "681/100"
    aperture_value: "178/100"
    color_space: 1
archive:
  endpoint: s3.example.com
  bucket: photos
`

func TestLoadFile(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "geostamp.yaml")
	require.NoError(t, os.WriteFile(fn, []byte(testYAML), 0o644))

	t.Setenv("GEOSTAMP_RADIUS", "5")
	t.Setenv("GEOSTAMP_ARCHIVE_PREFIX", "stamped")
	t.Setenv("PORT", "9000")

	cfg, err := Load(viper.New(), fn)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port, "PORT overrides the file")
	assert.Equal(t, 5.0, cfg.Radius)
	assert.Equal(t, "-05:00", cfg.Offset)
	assert.True(t, cfg.AutoOrient)
	assert.Equal(t, "photos", cfg.Archive.Bucket)
	assert.Equal(t, "stamped", cfg.Archive.Prefix)
	assert.True(t, cfg.Archive.Enabled())

	require.Len(t, cfg.Profiles, 1)
	p := cfg.Profiles[0]
	assert.Equal(t, exif.Rational{1, 120}, p.ExposureTime)
	assert.Equal(t, exif.Rational{185, 100}, p.FNumber)
	assert.Equal(t, 50, p.ISO)

	opt, err := cfg.StamperOptions()
	require.NoError(t, err)
	assert.Equal(t, "Pixel 7", opt.Profile.Model)
	assert.Equal(t, "-05:00", opt.Zone.String())
	assert.Equal(t, 5.0, opt.Radius)
	assert.True(t, opt.AutoOrient)
}

func TestPortPrecedence(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("GEOSTAMP_PORT", "7000")
	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Port)
}

func TestLoadInvalid(t *testing.T) {
	for key, value := range map[string]string{
		"GEOSTAMP_QUALITY":    "0",
		"GEOSTAMP_OFFSET":     "CET",
		"GEOSTAMP_RADIUS":     "-1",
		"GEOSTAMP_PORT":       "70000",
		"GEOSTAMP_MAX_PIXELS": "0",
	} {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load(viper.New(), "")
			assert.Error(t, err)
		})
	}

	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestMaxPixels(t *testing.T) {
	t.Setenv("GEOSTAMP_MAX_PIXELS", "4096")
	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	opt, err := cfg.StamperOptions()
	require.NoError(t, err)
	assert.Equal(t, int64(4096), opt.MaxPixels)
}

func TestUnknownProfile(t *testing.T) {
	t.Setenv("GEOSTAMP_PROFILE", "no-such-camera")
	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	_, err = cfg.StamperOptions()
	assert.ErrorContains(t, err, "no-such-camera")
}

func TestLoadDotEnv(t *testing.T) {
	const key = "GEOSTAMP_FILENAME_PREFIX"
	require.Empty(t, os.Getenv(key))
	t.Cleanup(func() { os.Unsetenv(key) })

	fn := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(fn, []byte(key+"=foto_\n"), 0o644))

	require.NoError(t, LoadDotEnv(fn, filepath.Join(t.TempDir(), "missing.env")))
	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "foto_", cfg.FilenamePrefix)
}
