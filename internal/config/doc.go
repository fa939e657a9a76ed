// Package config manages user-level defaults stored at
// ~/.create-template-next-15/config.yaml and the optional .env file whose
// variables are passed to every git and package-manager process.
package config
