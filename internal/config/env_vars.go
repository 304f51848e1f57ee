package config

import "fmt"

type EnvVars struct {
	Port           string `env:"PORT" envDefault:"8080"`
	AppName        string `env:"APP_NAME" envDefault:"Session Guard"`
	Environment    string `env:"ENV" envDefault:"DEV"`
	BaseURL        string `env:"BASE_URL" envDefault:"http://localhost:8080"`
	DataFolder     string `env:"FOLDER" envDefault:"./data"`
	StorageBackend string `env:"SESSION_STORAGE" envDefault:"file"` // "file" or "sqlite"
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	port := e.Port
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (e EnvVars) GetAppName() string {
	return e.AppName
}

func (e EnvVars) GetEnv() string {
	return e.Environment
}

// GetBaseURL returns the externally visible base URL (e.g.
// "https://app.example.com"), used to build the OAuth redirect URL.
func (e EnvVars) GetBaseURL() string {
	return e.BaseURL
}

func (e EnvVars) GetDataFolder() string {
	return e.DataFolder
}

func (e EnvVars) GetStorageBackend() string {
	return e.StorageBackend
}
