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

package talkgroup

import "github.com/svxreflector/goreflector/session"

// Filter is a predicate on sessions, composable with And/Or. broadcastMsg
// and broadcastUdpMsg (§4.8) apply a Filter to every CONNECTED session in
// the registry during a single pass.
type Filter func(s *session.Session) bool

func All(*session.Session) bool { return true }

func Except(skip *session.Session) Filter {
	return func(s *session.Session) bool { return s != skip }
}

func TG(tg uint32) Filter {
	return func(s *session.Session) bool { return s.CurrentTG() == tg }
}

func MonitoringTG(tg uint32) Filter {
	return func(s *session.Session) bool { return s.IsMonitoring(tg) }
}

func ProtoVersionAtLeast(major, minor uint16) Filter {
	min := protoVer{major, minor}
	return func(s *session.Session) bool {
		v := s.ProtoVer()
		return !protoVer{v.Major, v.Minor}.less(min)
	}
}

func ProtoVersionInRange(minMajor, minMinor, maxMajor, maxMinor uint16) Filter {
	lo := protoVer{minMajor, minMinor}
	hi := protoVer{maxMajor, maxMinor}
	return func(s *session.Session) bool {
		v := protoVer{s.ProtoVer().Major, s.ProtoVer().Minor}
		return !v.less(lo) && !hi.less(v)
	}
}

// protoVer is a tiny local comparable pair so this package doesn't need
// to import protocol just for ordering two uint16s.
type protoVer struct{ major, minor uint16 }

func (v protoVer) less(o protoVer) bool {
	return v.major < o.major || (v.major == o.major && v.minor < o.minor)
}

func And(filters ...Filter) Filter {
	return func(s *session.Session) bool {
		for _, f := range filters {
			if !f(s) {
				return false
			}
		}
		return true
	}
}

func Or(filters ...Filter) Filter {
	return func(s *session.Session) bool {
		for _, f := range filters {
			if f(s) {
				return true
			}
		}
		return false
	}
}
