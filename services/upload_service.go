package services

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/SegundamanoDev/Aurelius-backend/config"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/google/uuid"
)

// Допустимые форматы подтверждения платежа
var allowedProofExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// UploadService загружает подтверждения платежей в объектное хранилище.
// Загрузка выполняется до открытия транзакционной области журнала,
// чтобы не держать ресурсы БД на время внешнего вызова.
type UploadService struct {
	uploader *s3manager.Uploader
	bucket   string
	folder   string
}

// NewUploadService создает новый экземпляр UploadService
func NewUploadService(cfg *config.Config) (*UploadService, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.S3.Region),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &UploadService{
		uploader: s3manager.NewUploader(sess),
		bucket:   cfg.S3.Bucket,
		folder:   cfg.S3.Folder,
	}, nil
}

// UploadProof загружает файл подтверждения и возвращает его URL
func (s *UploadService) UploadProof(file multipart.File, header *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedProofExtensions[ext] {
		return "", newValidationError("proof image must be jpg, png or webp")
	}

	key := s.folder + "/" + uuid.NewString() + ext

	result, err := s.uploader.Upload(&s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(header.Header.Get("Content-Type")),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload proof image: %w", err)
	}

	return result.Location, nil
}
