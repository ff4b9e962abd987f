package app

// Env is the name of the application environment, used for DI.
type Env string

// EnvDevelopment enables the error details in the API responses.
const EnvDevelopment Env = "development"

// Development reports whether the application runs in the development environment.
func (e Env) Development() bool {
	return e == EnvDevelopment
}
