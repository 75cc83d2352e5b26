/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package reflcfg is the hierarchical, hot-reloadable config store:
// GLOBAL/TG#<n>/ROOT_CA/ISSUING_CA/SERVER_CERT/USERS/PASSWORDS sections
// loaded from an INI file, validated, and watched for changes (§4.11).
package reflcfg

import "github.com/svxreflector/goreflector/errors"

const (
	ErrorLoad errors.CodeError = iota + errors.MinPkgReflConfig
	ErrorParse
	ErrorValidate
	ErrorUnknownSection
	ErrorUnknownTag
	ErrorBadValue
	ErrorWatch
)

func init() {
	errors.RegisterIdFctMessage(ErrorLoad, getMessage)
}

func getMessage(code errors.CodeError) string {
	switch code {
	case ErrorLoad:
		return "failed to read config file"
	case ErrorParse:
		return "failed to parse config file"
	case ErrorValidate:
		return "config failed struct validation"
	case ErrorUnknownSection:
		return "unknown config section"
	case ErrorUnknownTag:
		return "unknown config tag"
	case ErrorBadValue:
		return "value does not fit the tag's expected form"
	case ErrorWatch:
		return "failed to watch config file for changes"
	}
	return ""
}
