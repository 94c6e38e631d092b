package lawpage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const savedPage = `<html><body>
<div class="lawcon">
  <p class="pty1_p4">제2조(정의)</p>
  <p>이 영에서
    <a class="link sfon1">「산업안전보건법」</a>
    <a class="link sfon2">제5조</a>
    <a class="link sfon3">제1항</a>
    및 <a class="link sfon2">제6조</a>
    에 따른 <a class="link">별표 1</a>
  </p>
</div>
<div class="lawcon">
  <p class="pty1_p4">제4조의2(위임)</p>
  <p><a class="sfon1">법</a> <a class="sfon6">시행규칙</a></p>
  <p>링크 없음</p>
</div>
<div class="lawcon">
  <p>제목 없는 블록 <a class="link sfon1">무시</a></p>
</div>
</body></html>`

func TestExtractGroupsLinks(t *testing.T) {
	rows, err := Extract(strings.NewReader(savedPage))
	require.NoError(t, err)

	assert.Equal(t, []Row{
		{Article: "2", Label: "「산업안전보건법」 제5조 제1항"},
		{Article: "2", Label: "제6조"},
		{Article: "2", Label: "별표 1"},
		{Article: "4의2", Label: "법"},
		{Article: "4의2", Label: "시행규칙"},
	}, rows)
}

func TestExtractEmptyPage(t *testing.T) {
	rows, err := Extract(strings.NewReader("<html><body><p>없음</p></body></html>"))
	require.NoError(t, err)
	assert.Empty(t, rows)
}
