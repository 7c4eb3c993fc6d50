package config

import "errors"

var (
	// ErrEmptyFileName is returned when an output file name is blank.
	ErrEmptyFileName = errors.New("output file name is empty")

	// ErrInvalidWordWrap is returned for a non-positive word wrap width.
	ErrInvalidWordWrap = errors.New("word_wrap must be positive")

	// ErrInvalidStyleURL is returned when style_url is not an http(s) URL.
	ErrInvalidStyleURL = errors.New("style_url must be an http or https URL")
)
