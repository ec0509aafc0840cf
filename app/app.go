package app

import (
	"database/sql"

	"github.com/go-playground/validator/v10"
	"github.com/surveyforge/surveyforge/config"
)

type App struct {
	*sql.DB
	*validator.Validate
	config.Config
}
