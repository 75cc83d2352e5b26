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

package version

import (
	"fmt"
	"runtime"
	"strings"

	hcversion "github.com/hashicorp/go-version"
)

// CheckGo verifies the running Go runtime against constraint using the
// given comparison operator (">=", ">", "=", "<", "<=", "~>" — anything
// hashicorp/go-version accepts as a constraint prefix). Used by the
// serve command's preflight check to fail fast on a runtime too old for
// the embedded PKI's elliptic-curve requirements.
func (v *version) CheckGo(constraint string, operator string) error {
	if strings.TrimSpace(constraint) == "" {
		return ErrorParamEmpty.Error(nil)
	}

	runtimeVer := strings.TrimPrefix(runtime.Version(), "go")
	actual, err := hcversion.NewVersion(runtimeVer)
	if err != nil {
		return ErrorGoVersionRuntime.Error(err)
	}

	want, err := hcversion.NewConstraint(fmt.Sprintf("%s %s", operator, constraint))
	if err != nil {
		return ErrorGoVersionInit.Error(err)
	}

	if !want.Check(actual) {
		return ErrorGoVersionConstraint.Error(fmt.Errorf("runtime %s does not satisfy %s %s", actual, operator, constraint))
	}

	return nil
}
