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

// Package version builds a self-describing build stamp (package name,
// release tag, build hash, author, license) for use in CLI --version
// output and the operator console banner. The cobra command tree
// (package cobra) consumes a Version through the interface below.
package version

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"sync"
	"time"
)

// License identifies the license text bundled with GetLicenseLegal,
// GetLicenseBoiler and GetLicenseFull.
type License uint8

const (
	License_MIT License = iota
	License_Apache_v2
	License_GNU_GPL_v3
	License_GNU_Affero_GPL_v3
	License_GNU_Lesser_GPL_v3
	License_Mozilla_PL_v2
	License_Unlicense
	License_Creative_Common_Zero_v1
	License_Creative_Common_Attribution_v4_int
	License_Creative_Common_Attribution_Share_Alike_v4_int
	License_SIL_Open_Font_1_1
)

// Version exposes the immutable build metadata of a binary. All methods
// are safe for concurrent use; the underlying fields are set once by
// NewVersion and never mutated afterward.
type Version interface {
	GetPackage() string
	GetDescription() string
	GetBuild() string
	GetRelease() string
	GetAuthor() string
	GetPrefix() string
	GetDate() string
	GetTime() time.Time
	GetAppId() string
	GetHeader() string
	GetInfo() string
	GetRootPackagePath() string

	GetLicenseName() string
	GetLicenseLegal(add ...License) string
	GetLicenseBoiler(add ...License) string
	GetLicenseFull(add ...License) string

	CheckGo(constraint string, operator string) error

	PrintInfo()
	PrintLicense(add ...License)
}

type version struct {
	mut sync.RWMutex

	lic License
	pkg string
	dsc string
	dat time.Time
	bld string
	rel string
	aut string
	pfx string
	pth string
}

// NewVersion builds a Version. date is parsed as RFC3339; an unparsable
// or empty value falls back to time.Now(). ref is any value from the
// calling package (typically a zero-value local struct) used purely to
// recover the caller's package path through reflection; numSubPackage
// strips that many trailing path segments to reach the module root
// (0 keeps the caller's own package, 1 its parent, and so on).
func NewVersion(lic License, pkg, description, date, build, release, author, prefix string, ref interface{}, numSubPackage int) Version {
	t, err := time.Parse(time.RFC3339, date)
	if err != nil {
		t = time.Now()
	}

	path := reflect.TypeOf(ref).PkgPath()
	if numSubPackage > 0 {
		parts := strings.Split(path, "/")
		if numSubPackage >= len(parts) {
			numSubPackage = len(parts) - 1
		}
		path = strings.Join(parts[:len(parts)-numSubPackage], "/")
	}

	if pkg == "" || pkg == "noname" {
		parts := strings.Split(path, "/")
		pkg = parts[len(parts)-1]
	}

	return &version{
		lic: lic,
		pkg: pkg,
		dsc: description,
		dat: t,
		bld: build,
		rel: release,
		aut: author,
		pfx: strings.ToUpper(prefix),
		pth: path,
	}
}

func (v *version) GetPackage() string {
	v.mut.RLock()
	defer v.mut.RUnlock()
	return v.pkg
}

func (v *version) GetDescription() string {
	v.mut.RLock()
	defer v.mut.RUnlock()
	return v.dsc
}

func (v *version) GetBuild() string {
	v.mut.RLock()
	defer v.mut.RUnlock()
	return v.bld
}

func (v *version) GetRelease() string {
	v.mut.RLock()
	defer v.mut.RUnlock()
	return v.rel
}

func (v *version) GetAuthor() string {
	v.mut.RLock()
	defer v.mut.RUnlock()
	return fmt.Sprintf("%s (source: %s)", v.aut, v.pth)
}

func (v *version) GetPrefix() string {
	v.mut.RLock()
	defer v.mut.RUnlock()
	return v.pfx
}

func (v *version) GetDate() string {
	v.mut.RLock()
	defer v.mut.RUnlock()
	return v.dat.Format(time.RFC1123)
}

func (v *version) GetTime() time.Time {
	v.mut.RLock()
	defer v.mut.RUnlock()
	return v.dat
}

func (v *version) GetRootPackagePath() string {
	v.mut.RLock()
	defer v.mut.RUnlock()
	return v.pth
}

func (v *version) GetAppId() string {
	v.mut.RLock()
	defer v.mut.RUnlock()
	return fmt.Sprintf("%s/%s (Runtime: %s %s/%s)", v.pkg, v.rel, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

func (v *version) GetHeader() string {
	v.mut.RLock()
	defer v.mut.RUnlock()
	return fmt.Sprintf("%s %s (build %s)", v.pkg, v.rel, v.bld)
}

func (v *version) GetInfo() string {
	v.mut.RLock()
	defer v.mut.RUnlock()
	return fmt.Sprintf("Release: %s\nBuild: %s\nDate: %s\nAuthor: %s\nLicense: %s",
		v.rel, v.bld, v.dat.Format(time.RFC1123), v.aut, licenseName(v.lic))
}

func (v *version) GetLicenseName() string {
	v.mut.RLock()
	defer v.mut.RUnlock()
	return licenseName(v.lic)
}
