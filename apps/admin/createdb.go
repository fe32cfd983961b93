package main

import (
	"github.com/shulehub/shule/core"
	"github.com/shulehub/shule/storage/database"
)

func (cli *commandLine) createDB() error {
	return database.CreateIfNotExist(core.Conf)
}
