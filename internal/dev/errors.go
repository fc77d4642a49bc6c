package dev

import (
	"time"

	"github.com/nu7hatch/gouuid"
)

type Error struct {
	Time      time.Time              `json:"time"`
	Component string                 `json:"component"`
	Operation string                 `json:"operation"`
	Error     string                 `json:"error"`
	Extra     map[string]interface{} `json:"extra"`
}

func (e Error) Slug() string {
	u, _ := uuid.NewV4()
	return u.String()
}

func NewError(component, operation string, err error, extra map[string]interface{}) Error {
	return Error{
		Time:      time.Now(),
		Component: component,
		Operation: operation,
		Error:     err.Error(),
		Extra:     extra,
	}
}
