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
	"strings"
	"time"
)

func licenseName(l License) string {
	switch l {
	case License_MIT:
		return "MIT License"
	case License_Apache_v2:
		return "Apache License, Version 2.0"
	case License_GNU_GPL_v3:
		return "GNU GENERAL PUBLIC LICENSE, Version 3"
	case License_GNU_Affero_GPL_v3:
		return "GNU AFFERO GENERAL PUBLIC LICENSE, Version 3"
	case License_GNU_Lesser_GPL_v3:
		return "GNU LESSER GENERAL PUBLIC LICENSE, Version 3"
	case License_Mozilla_PL_v2:
		return "Mozilla Public License, Version 2.0"
	case License_Unlicense:
		return "Free and unencumbered software"
	case License_Creative_Common_Zero_v1:
		return "Creative Commons CC0 1.0 Universal"
	case License_Creative_Common_Attribution_v4_int:
		return "Creative Commons Attribution 4.0 International"
	case License_Creative_Common_Attribution_Share_Alike_v4_int:
		return "Creative Commons Attribution-ShareAlike 4.0 International"
	case License_SIL_Open_Font_1_1:
		return "SIL OPEN FONT LICENSE, Version 1.1"
	default:
		return "Unknown License"
	}
}

func licenseBoiler(l License, year string) string {
	switch l {
	case License_MIT:
		return fmt.Sprintf("MIT License\n\nCopyright (c) %s\n\nPermission is hereby granted, free of charge, to any person obtaining a copy "+
			"of this software and associated documentation files, to deal in the Software without restriction.", year)
	case License_Apache_v2:
		return fmt.Sprintf("Apache License\nVersion 2.0, January 2004\n\nCopyright (c) %s", year)
	case License_GNU_GPL_v3:
		return fmt.Sprintf("GNU GENERAL PUBLIC LICENSE\nVersion 3, 29 June 2007\n\nCopyright (c) %s", year)
	default:
		return fmt.Sprintf("%s\n\nCopyright (c) %s", licenseName(l), year)
	}
}

func licenseLegal(l License) string {
	switch l {
	case License_MIT:
		return "MIT License\n\nPermission is hereby granted, free of charge, to any person obtaining a copy " +
			"of this software and associated documentation files (the \"Software\"), to deal " +
			"in the Software without restriction, including without limitation the rights " +
			"to use, copy, modify, merge, publish, distribute, sublicense, and/or sell " +
			"copies of the Software, and to permit persons to whom the Software is " +
			"furnished to do so, subject to the following conditions.\n\n" +
			"THE SOFTWARE IS PROVIDED \"AS IS\", WITHOUT WARRANTY OF ANY KIND."
	case License_Apache_v2:
		return "Apache License\nVersion 2.0, January 2004\nhttp://www.apache.org/licenses/\n\n" +
			"Licensed under the Apache License, Version 2.0 (the \"License\"); " +
			"you may not use this file except in compliance with the License."
	case License_GNU_GPL_v3:
		return "GNU GENERAL PUBLIC LICENSE\nVersion 3, 29 June 2007\n\n" +
			"This program is free software: you can redistribute it and/or modify " +
			"it under the terms of the GNU General Public License as published by " +
			"the Free Software Foundation, either version 3 of the License."
	default:
		return licenseName(l)
	}
}

func (v *version) GetLicenseLegal(add ...License) string {
	v.mut.RLock()
	lic := v.lic
	v.mut.RUnlock()

	parts := []string{licenseLegal(lic)}
	for _, a := range add {
		parts = append(parts, licenseLegal(a))
	}
	return strings.Join(parts, "\n\n----\n\n")
}

func (v *version) GetLicenseBoiler(add ...License) string {
	v.mut.RLock()
	lic, dat := v.lic, v.dat
	v.mut.RUnlock()

	year := dat.Format("2006")
	if year == "0001" {
		year = time.Now().Format("2006")
	}

	parts := []string{licenseBoiler(lic, year)}
	for _, a := range add {
		parts = append(parts, licenseBoiler(a, year))
	}
	return strings.Join(parts, "\n\n----\n\n")
}

func (v *version) GetLicenseFull(add ...License) string {
	return v.GetLicenseBoiler(add...) + "\n\n" + v.GetLicenseLegal(add...)
}

func (v *version) PrintInfo() {
	println(v.GetHeader())
	println(v.GetInfo())
}

func (v *version) PrintLicense(add ...License) {
	println(v.GetLicenseBoiler(add...))
}
