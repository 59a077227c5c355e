package s3

import (
	"errors"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"

	"github.com/antgroup/vfsio/modules/vfs"
)

func TestByteRange(t *testing.T) {
	assert.Equal(t, "bytes=10-", byteRange(10, -1))
	assert.Equal(t, "bytes=0-9", byteRange(0, 10))
}

func TestTranslate(t *testing.T) {
	err := translate("b", "k", &smithy.GenericAPIError{Code: "NoSuchKey", Message: "The specified key does not exist."})
	assert.True(t, vfs.IsCode(err, vfs.NotFound))
	assert.Equal(t, "s3://b/k: The specified key does not exist.", err.Error())

	err = translate("b", "k", &smithy.GenericAPIError{Code: "AccessDenied", Message: "denied"})
	assert.True(t, vfs.IsCode(err, vfs.PermissionDenied))

	err = translate("b", "k", errors.New("dial tcp: refused"))
	assert.True(t, vfs.IsCode(err, vfs.Failed))
}
