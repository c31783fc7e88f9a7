package middleware

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"YourTube/internal/apperror"
	"YourTube/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	contextUploads = "uploadedFiles"
	// 普通表单字段的最大长度
	maxFieldBytes = 1 << 20
)

// UploadMiddleware 把multipart里指定字段的文件流式写到dir下的临时文件，handler通过UploadedFile拿到本地路径
// 流程：1、逐个读取part 2、普通字段收集起来，c.PostForm照常可用 3、文件写成 <uuid><ext> 4、handler返回后删除临时文件
func UploadMiddleware(dir string, maxBytes int64, fields ...string) gin.HandlerFunc {
	wanted := make(map[string]bool, len(fields))
	for _, f := range fields {
		wanted[f] = true
	}

	return func(c *gin.Context) {
		if maxBytes > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		reader, err := c.Request.MultipartReader()
		if errors.Is(err, http.ErrNotMultipart) {
			// 不是multipart的请求（例如只改标题的JSON请求）直接放行
			c.Next()
			return
		}
		if err != nil {
			abortWithError(c, apperror.BadRequest("无效的表单数据"))
			return
		}

		files := make(map[string]string)
		defer cleanupFiles(files)

		values := url.Values{}
		for {
			part, err := reader.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				logger.Log.WithError(err).Warn("读取multipart数据失败")
				abortWithError(c, apperror.BadRequest("无效的表单数据"))
				return
			}

			name := part.FormName()
			if part.FileName() == "" {
				// 多读一个字节，用来区分刚好等于上限和超出上限
				value, err := io.ReadAll(io.LimitReader(part, maxFieldBytes+1))
				if err != nil {
					abortWithError(c, apperror.BadRequest("无效的表单数据"))
					return
				}
				if len(value) > maxFieldBytes {
					abortWithError(c, apperror.BadRequest("表单字段过长", name+"超过1MB"))
					return
				}
				values.Add(name, string(value))
				continue
			}
			if !wanted[name] || files[name] != "" {
				// 不认识的文件字段丢弃
				_, _ = io.Copy(io.Discard, part)
				continue
			}

			path, err := saveUpload(dir, part)
			if err != nil {
				logger.Log.WithError(err).WithField("field", name).Error("保存上传文件失败")
				abortWithError(c, apperror.BadRequest("文件上传失败"))
				return
			}
			files[name] = path
		}

		// 替换掉MultipartReader留下的标记，后面的c.PostForm就不会再去解析请求体
		c.Request.MultipartForm = &multipart.Form{Value: values}
		c.Request.PostForm = values
		c.Request.Form = values
		c.Set(contextUploads, files)

		c.Next()
	}
}

func saveUpload(dir string, part *multipart.Part) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	ext := strings.ToLower(filepath.Ext(part.FileName()))
	path := filepath.Join(dir, uuid.NewString()+ext)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, part); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	return path, f.Close()
}

// 媒体托管上传后通常已经删掉了临时文件，这里只是兜底
func cleanupFiles(files map[string]string) {
	for _, path := range files {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.Log.WithError(err).WithField("path", path).Warn("删除临时文件失败")
		}
	}
}

// UploadedFile 返回字段对应的临时文件路径，没有上传时返回空串
func UploadedFile(c *gin.Context, field string) string {
	v, ok := c.Get(contextUploads)
	if !ok {
		return ""
	}
	files, _ := v.(map[string]string)
	return files[field]
}
