package service

import (
	"context"
	"errors"
	"strings"

	"YourTube/internal/apperror"
	"YourTube/internal/model"
	"YourTube/internal/repository"

	"gorm.io/gorm"
)

// notFoundOr 记录不存在时换成带具体信息的404，其他错误原样返回
func notFoundOr(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound(message)
	}
	return err
}

// canView 未发布的视频只有作者自己看得到
func canView(video *model.Video, viewerID uint64) bool {
	return video.IsPublished || video.OwnerID == viewerID
}

// findVisibleVideo 按viewer的可见性查视频，看不到的和不存在的一样返回404
func findVisibleVideo(ctx context.Context, videoRepo repository.VideoRepository, videoID, viewerID uint64) (*model.Video, error) {
	video, err := videoRepo.FindByID(ctx, videoID)
	if err != nil {
		return nil, notFoundOr(err, "视频不存在")
	}
	if !canView(video, viewerID) {
		return nil, apperror.NotFound("视频不存在")
	}
	return video, nil
}

func ensureOwner(ownerID, userID uint64, message string) error {
	if ownerID != userID {
		return apperror.Forbidden(message)
	}
	return nil
}

// requireFields 参数按 (字段名, 值) 成对传入，所有为空的字段都列进错误细节
func requireFields(message string, pairs ...string) error {
	var missing []string
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			missing = append(missing, pairs[i]+"不能为空")
		}
	}
	if len(missing) > 0 {
		return apperror.BadRequest(message, missing...)
	}
	return nil
}
