package utils

import (
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
)

const (
	// UploadRoot holds player-visible assets served under /uploads.
	UploadRoot = "uploads"
	// SelfieDir holds captured selfie images.
	SelfieDir = "uploads/selfies"
	// BulkUploadDir keeps the parallel-line user files; the suggestion
	// endpoint reads the most recent set back out of it.
	BulkUploadDir = "bulk_uploads"
	// TempImportDir holds single-file imports only while they are being
	// processed. The cleanup worker reaps anything left behind.
	TempImportDir = "bulk_uploads/tmp"
	// QuestionFileDir keeps admin-uploaded question text files.
	QuestionFileDir = "question_files"
)

// EnsureUploadDirs creates every directory tree the service writes into.
func EnsureUploadDirs() error {
	for _, dir := range []string{UploadRoot, SelfieDir, BulkUploadDir, TempImportDir, QuestionFileDir} {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return err
		}
	}
	return nil
}

// SaveFile saves the uploaded file to the given destination path
func SaveFile(fileHeader *multipart.FileHeader, destPath string) error {
	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	dst, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, file)
	return err
}
