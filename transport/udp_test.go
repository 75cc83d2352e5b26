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

package transport_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/svxreflector/goreflector/transport"
)

var _ = Describe("UDP AEAD datagrams", func() {
	var (
		key    transport.UDPKey
		ivRand transport.UDPIVRand
		cid    uint16 = 7
	)

	BeforeEach(func() {
		var err error
		key, err = transport.NewUDPKey()
		Expect(err).To(BeNil())
		ivRand, err = transport.NewUDPIVRand()
		Expect(err).To(BeNil())
	})

	It("round-trips a normal datagram", func() {
		sealed, err := transport.SealDatagram(key, ivRand, cid, 5, []byte("hello"))
		Expect(err).To(BeNil())

		counter, plain, oerr := transport.OpenDatagram(key, ivRand, cid, sealed)
		Expect(oerr).To(BeNil())
		Expect(counter).To(Equal(uint32(5)))
		Expect(plain).To(Equal([]byte("hello")))
	})

	It("round-trips the extended-AAD registration datagram (counter 0)", func() {
		sealed, err := transport.SealDatagram(key, ivRand, cid, 0, []byte("reg"))
		Expect(err).To(BeNil())

		rcid, ok := transport.PeekRegistrationClientID(sealed)
		Expect(ok).To(BeTrue())
		Expect(rcid).To(Equal(cid))

		counter, plain, oerr := transport.OpenDatagram(key, ivRand, cid, sealed)
		Expect(oerr).To(BeNil())
		Expect(counter).To(Equal(uint32(0)))
		Expect(plain).To(Equal([]byte("reg")))
	})

	It("rejects a datagram decrypted with the wrong key", func() {
		sealed, _ := transport.SealDatagram(key, ivRand, cid, 1, []byte("x"))
		otherKey, _ := transport.NewUDPKey()
		_, _, err := transport.OpenDatagram(otherKey, ivRand, cid, sealed)
		Expect(err).NotTo(BeNil())
		Expect(err.IsCode(transport.ErrorDecrypt)).To(BeTrue())
	})

	It("rejects a tampered ciphertext", func() {
		sealed, _ := transport.SealDatagram(key, ivRand, cid, 1, []byte("x"))
		sealed[len(sealed)-1] ^= 0xFF
		_, _, err := transport.OpenDatagram(key, ivRand, cid, sealed)
		Expect(err).NotTo(BeNil())
	})
})

var _ = Describe("replay/ordering policy (§4.2)", func() {
	It("accepts counter 0 and then the exact next counter", func() {
		var w transport.ReplayWindow
		Expect(w.Classify(0)).To(Equal(transport.ReplayAccept))
		Expect(w.Classify(1)).To(Equal(transport.ReplayAccept))
		Expect(w.Classify(2)).To(Equal(transport.ReplayAccept))
	})

	It("reports a gap and resynchronizes when counters are skipped", func() {
		var w transport.ReplayWindow
		w.Classify(0)
		Expect(w.Classify(5)).To(Equal(transport.ReplayAcceptGap))
		Expect(w.Classify(6)).To(Equal(transport.ReplayAccept))
	})

	It("drops a duplicate or late counter", func() {
		var w transport.ReplayWindow
		w.Classify(0)
		w.Classify(3)
		Expect(w.Classify(3)).To(Equal(transport.ReplayDrop))
		Expect(w.Classify(1)).To(Equal(transport.ReplayDrop))
	})

	It("resets cleanly on re-registration", func() {
		var w transport.ReplayWindow
		w.Classify(0)
		w.Classify(10)
		w.Reset()
		Expect(w.Classify(0)).To(Equal(transport.ReplayAccept))
	})
})
