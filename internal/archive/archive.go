// Package archive renders submitted batches into the zip of Markdown records
// the purchasing team imports, and keeps copies of produced archives.
package archive

import (
	"bytes"
	"fmt"

	"supply-cart/internal/model"

	"github.com/klauspost/compress/zip"
)

// DownloadName is the attachment name offered for every export.
const DownloadName = "물품신청_선택항목.zip"

// Archive is a finished export.
type Archive struct {
	Name    string
	Data    []byte
	Records int
}

// RecordName names the n-th (1-based) record of a batch.
func RecordName(batchID string, n int) string {
	return fmt.Sprintf("%s_%d.md", batchID, n)
}

// RenderRecord renders one submitted item of batch as a front-matter record.
// Requester and request date come from the batch summary.
func RenderRecord(batch model.SubmissionSummary, item model.SubmittedItem) []byte {
	var b bytes.Buffer
	b.WriteString("---\n")
	fmt.Fprintf(&b, "품목명: %s\n", item.ItemName)
	fmt.Fprintf(&b, "신청자: %s\n", batch.Username)
	fmt.Fprintf(&b, "요청일: %s\n", batch.SubmittedAt.Format("2006-01-02"))
	fmt.Fprintf(&b, "구매링크: %s\n", item.PurchaseLink)
	fmt.Fprintf(&b, "옵션명: %s\n", item.Option())
	fmt.Fprintf(&b, "수량: %d\n", item.Quantity)
	fmt.Fprintf(&b, "개당금액: %d\n", item.UnitPrice)
	b.WriteString("신청일:\n")
	b.WriteString("상태: 리스트업\n")
	b.WriteString("---\n\n")
	return b.Bytes()
}

// Build writes one deflated record per item of every batch, in the order
// given.
func Build(batches []model.Batch) (*Archive, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	records := 0
	for _, batch := range batches {
		for i, item := range batch.Items {
			header := &zip.FileHeader{
				Name:     RecordName(batch.BatchID, i+1),
				Method:   zip.Deflate,
				Modified: batch.SubmittedAt,
			}
			w, err := zw.CreateHeader(header)
			if err != nil {
				return nil, fmt.Errorf("failed to create archive entry %s: %w", header.Name, err)
			}
			if _, err := w.Write(RenderRecord(batch.SubmissionSummary, item)); err != nil {
				return nil, fmt.Errorf("failed to write archive entry %s: %w", header.Name, err)
			}
			records++
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalise archive: %w", err)
	}

	return &Archive{
		Name:    DownloadName,
		Data:    buf.Bytes(),
		Records: records,
	}, nil
}
