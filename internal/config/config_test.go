package config_test

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/jacobsa/oglematchers"
	. "github.com/jacobsa/ogletest"

	"github.com/scfs/scfs/internal/config"
)

func TestConfig(t *testing.T) { RunTests(t) }

type ConfigTest struct {
	dir string
}

func init() { RegisterTestSuite(&ConfigTest{}) }

func (t *ConfigTest) SetUp(ti *TestInfo) {
	var err error
	t.dir, err = os.MkdirTemp("", "scfs-config-test")
	AssertEq(nil, err)
}

func (t *ConfigTest) TearDown() {
	os.RemoveAll(t.dir)
}

func (t *ConfigTest) MarshalWritesTheBlocksizeKey() {
	c := config.Config{BlockSize: 2097152}
	data, err := c.Marshal()
	AssertEq(nil, err)
	ExpectEq(`{"blocksize":2097152}`, string(data))
}

func (t *ConfigTest) LoadReadsBackWhatWasWritten() {
	c := config.Config{BlockSize: 512 * 1024}
	data, err := c.Marshal()
	AssertEq(nil, err)

	AssertEq(nil, os.WriteFile(filepath.Join(t.dir, config.FileName), data, 0644))

	got, err := config.Load(t.dir)
	AssertEq(nil, err)
	ExpectEq(c.BlockSize, got.BlockSize)
}

func (t *ConfigTest) LoadReportsNotFound() {
	_, err := config.Load(t.dir)
	ExpectThat(err, Error(HasSubstr("SCFS config file not found")))
}

func (t *ConfigTest) LoadReportsInvalidJSON() {
	AssertEq(nil, os.WriteFile(filepath.Join(t.dir, config.FileName), []byte("not json"), 0644))

	_, err := config.Load(t.dir)
	ExpectThat(err, Error(HasSubstr("SCFS config file contains invalid JSON")))
}

func (t *ConfigTest) LoadReportsInvalidJSONForAMissingBlockSize() {
	AssertEq(nil, os.WriteFile(filepath.Join(t.dir, config.FileName), []byte("{}"), 0644))

	_, err := config.Load(t.dir)
	ExpectThat(err, Error(HasSubstr("SCFS config file contains invalid JSON")))
}

func (t *ConfigTest) DefaultUsesTheDocumentedBlockSize() {
	ExpectEq(config.DefaultBlockSize, config.Default().BlockSize)
	ExpectEq(uint64(2097152), config.Default().BlockSize)
}
