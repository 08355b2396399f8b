// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package stagingdir

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("D", func() {
	var root string

	BeforeEach(func() {
		var err error
		root, err = os.MkdirTemp("", "stagingdir_test")
		Expect(err).ToNot(HaveOccurred())
	})

	AfterEach(func() {
		Expect(os.RemoveAll(root)).To(Succeed())
	})

	It("commits its contents to the destination", func() {
		dest := filepath.Join(root, "out")
		sd, err := New("", dest)
		Expect(err).ToNot(HaveOccurred())
		Expect(filepath.Dir(sd.Path())).To(Equal(root))

		Expect(os.WriteFile(sd.Path("a.txt"), []byte("hello"), 0644)).To(Succeed())
		Expect(sd.Commit(dest)).To(Succeed())
		Expect(sd.Valid()).To(BeFalse())

		data, err := os.ReadFile(filepath.Join(dest, "a.txt"))
		Expect(err).ToNot(HaveOccurred())
		Expect(string(data)).To(Equal("hello"))

		// Destroy after commit is a no-op.
		Expect(sd.Destroy()).To(Succeed())
		Expect(sd.Commit(dest)).ToNot(Succeed())
	})

	It("replaces an existing destination", func() {
		dest := filepath.Join(root, "out")
		Expect(os.MkdirAll(dest, 0755)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(dest, "old.txt"), nil, 0644)).To(Succeed())

		sd, err := New(root, dest)
		Expect(err).ToNot(HaveOccurred())
		Expect(os.WriteFile(sd.Path("new.txt"), nil, 0644)).To(Succeed())
		Expect(sd.Commit(dest)).To(Succeed())

		Expect(filepath.Join(dest, "new.txt")).To(BeAnExistingFile())
		Expect(filepath.Join(dest, "old.txt")).ToNot(BeAnExistingFile())
	})

	It("removes its contents on Destroy", func() {
		sd, err := New(root, filepath.Join(root, "out"))
		Expect(err).ToNot(HaveOccurred())
		path := sd.Path()

		Expect(sd.Destroy()).To(Succeed())
		Expect(path).ToNot(BeADirectory())
		Expect(func() { sd.Path() }).To(Panic())
	})
})

func TestStagingDir(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Testing stagingdir")
}
