package service

import (
	"context"
	"strings"

	"YourTube/internal/apperror"
	"YourTube/internal/data"
	"YourTube/internal/dto"
	"YourTube/internal/model"
	"YourTube/internal/repository"
)

type CommentService interface {
	// 获取一个视频的评论，最新的在前，带点赞数和当前用户是否点赞
	GetVideoComments(ctx context.Context, videoID, viewerID uint64, page, limit int) (dto.Page[dto.CommentResponse], error)
	AddComment(ctx context.Context, videoID, userID uint64, content string) (*dto.CommentResponse, error)
	UpdateComment(ctx context.Context, commentID, userID uint64, content string) (*dto.CommentResponse, error)
	DeleteComment(ctx context.Context, commentID, userID uint64) error
}

type commentService struct {
	commentRepo repository.CommentRepository
	videoRepo   repository.VideoRepository
	likeRepo    repository.LikeRepository
	uow         data.UnitOfWork
}

func NewCommentService(commentRepo repository.CommentRepository, videoRepo repository.VideoRepository, likeRepo repository.LikeRepository, uow data.UnitOfWork) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		videoRepo:   videoRepo,
		likeRepo:    likeRepo,
		uow:         uow,
	}
}

// 获取视频的评论列表：1、确认视频存在且对当前用户可见 2、计算分页参数，查当前页 3、一次性查出这一页评论的点赞数和当前用户的点赞状态
func (s *commentService) GetVideoComments(ctx context.Context, videoID, viewerID uint64, page, limit int) (dto.Page[dto.CommentResponse], error) {
	if _, err := findVisibleVideo(ctx, s.videoRepo, videoID, viewerID); err != nil {
		return dto.Page[dto.CommentResponse]{}, err
	}
	p := dto.NewPagination(page, limit)
	comments, total, err := s.commentRepo.ListByVideo(ctx, videoID, p.Offset(), p.Limit)
	if err != nil {
		return dto.Page[dto.CommentResponse]{}, err
	}

	ids := make([]uint64, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.ID)
	}
	counts, err := s.likeRepo.CountByTargets(ctx, model.TargetComment, ids)
	if err != nil {
		return dto.Page[dto.CommentResponse]{}, err
	}
	liked, err := s.likeRepo.LikedTargets(ctx, viewerID, model.TargetComment, ids)
	if err != nil {
		return dto.Page[dto.CommentResponse]{}, err
	}

	docs := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		resp := dto.ToCommentResponse(&comments[i])
		resp.LikesCount = counts[comments[i].ID]
		resp.IsLiked = liked[comments[i].ID]
		docs = append(docs, resp)
	}
	return dto.NewPage(docs, total, p.Page, p.Limit), nil
}

// 创建评论：1、内容不能为空 2、视频必须存在且可见 3、创建后带着Owner再查一次
func (s *commentService) AddComment(ctx context.Context, videoID, userID uint64, content string) (*dto.CommentResponse, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperror.BadRequest("评论内容不能为空")
	}
	if _, err := findVisibleVideo(ctx, s.videoRepo, videoID, userID); err != nil {
		return nil, err
	}
	newComment := &model.Comment{
		VideoID: videoID,
		OwnerID: userID,
		Content: content,
	}
	if err := s.commentRepo.Create(ctx, newComment); err != nil {
		return nil, err
	}
	// 创建成功后，立刻把它带着关联数据再查出来，FindByID就能顺带Preload出Owner
	created, err := s.commentRepo.FindByID(ctx, newComment.ID)
	if err != nil {
		return nil, err
	}
	resp := dto.ToCommentResponse(created)
	return &resp, nil
}

func (s *commentService) UpdateComment(ctx context.Context, commentID, userID uint64, content string) (*dto.CommentResponse, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperror.BadRequest("评论内容不能为空")
	}
	comment, err := s.commentRepo.FindByID(ctx, commentID)
	if err != nil {
		return nil, notFoundOr(err, "评论不存在")
	}
	if err := ensureOwner(comment.OwnerID, userID, "只能修改自己的评论"); err != nil {
		return nil, err
	}
	comment.Content = content
	if err := s.commentRepo.Update(ctx, comment, "content"); err != nil {
		return nil, err
	}
	resp := dto.ToCommentResponse(comment)
	return &resp, nil
}

// 删除评论时它收到的点赞一起删，放在同一个事务里
func (s *commentService) DeleteComment(ctx context.Context, commentID, userID uint64) error {
	comment, err := s.commentRepo.FindByID(ctx, commentID)
	if err != nil {
		return notFoundOr(err, "评论不存在")
	}
	if err := ensureOwner(comment.OwnerID, userID, "只能删除自己的评论"); err != nil {
		return err
	}
	return s.uow.Execute(ctx, func(repos *data.TransactionalRepositories) error {
		if err := repos.LikeRepo.DeleteByTargets(ctx, model.TargetComment, []uint64{commentID}); err != nil {
			return err
		}
		return repos.CommentRepo.Delete(ctx, commentID)
	})
}
