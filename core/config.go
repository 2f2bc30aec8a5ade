package core

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config holds the settings shared by the stores, the grades engine and the admin tooling.
type Config struct {
	Env          string
	Debug        bool
	TestMode     bool
	AppName      string
	Build        string
	WorkDir      string
	DataDir      string
	GradesFile   string // relative to DataDir unless absolute
	StateFile    string // relative to DataDir unless absolute
	RollbarToken string

	TableCapacity int // max live+tombstoned rows per entity table
	IndexBuckets  int
	BcryptCost    int
}

// NewConfig loads the configuration from defaults, an optional `config/.env.<env>` file
// and the environment (prefixed with the upper-cased env name, eg. `DEV_DEBUG`).
func NewConfig() (*Config, error) {
	conf := viper.New()

	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, "config: getting working directory")
	}

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("testMode", false)
	conf.SetDefault("appName", "Tutorias")
	conf.SetDefault("build", "dev")
	conf.SetDefault("workDir", wd)
	conf.SetDefault("dataDir", "data")
	conf.SetDefault("gradesFile", "grades_data.json")
	conf.SetDefault("stateFile", "store_state.json")
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("tableCapacity", 10000)
	conf.SetDefault("indexBuckets", 10000)
	conf.SetDefault("bcryptCost", 10)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(conf.GetString("workDir"), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "config: loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "config: stat %s", dotEnvPath)
	}
	conf.AutomaticEnv()

	return &Config{
		Env:           env,
		Debug:         conf.GetBool("debug"),
		TestMode:      conf.GetBool("testMode"),
		AppName:       conf.GetString("appName"),
		Build:         conf.GetString("build"),
		WorkDir:       conf.GetString("workDir"),
		DataDir:       conf.GetString("dataDir"),
		GradesFile:    conf.GetString("gradesFile"),
		StateFile:     conf.GetString("stateFile"),
		RollbarToken:  conf.GetString("rollbarToken"),
		TableCapacity: conf.GetInt("tableCapacity"),
		IndexBuckets:  conf.GetInt("indexBuckets"),
		BcryptCost:    conf.GetInt("bcryptCost"),
	}, nil
}

// DataPath resolves name against DataDir (and DataDir against WorkDir).
func (c *Config) DataPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	dir := c.DataDir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(c.WorkDir, dir)
	}
	return filepath.Join(dir, name)
}

// GradesPath is the location of the persisted grades state.
func (c *Config) GradesPath() string { return c.DataPath(c.GradesFile) }

// StatePath is the location of the persisted entity tables.
func (c *Config) StatePath() string { return c.DataPath(c.StateFile) }
