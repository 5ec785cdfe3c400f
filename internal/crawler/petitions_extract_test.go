package crawler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const petitionListHTML = `<html><body>
<ul class="board_list_type">
  <li>
    <a href="/proceed/onGoingAll/12345">
      <span class="type">[환경]</span>
      <p class="subject">미세먼지 저감 대책 마련에 관한 청원</p>
      <span class="blued">1,234명</span>
    </a>
  </li>
  <li>
    <a href="/proceed/onGoingAll/67890">
      <span class="type">[교육]</span>
      <p class="subject">초등학교 급식 개선에 관한 청원</p>
      <span class="blued">50,000</span>
    </a>
  </li>
  <li>
    <a href="/proceed/onGoingAll/99999">
      <span class="type">[기타]</span>
      <p class="subject">   </p>
      <span class="blued">10</span>
    </a>
  </li>
</ul>
</body></html>`

func TestExtractPetitions(t *testing.T) {
	doc := mustDoc(t, petitionListHTML)
	now := time.Date(2026, time.August, 28, 12, 0, 0, 0, time.UTC)

	petitions := ExtractPetitions(doc, "https://petitions.assembly.go.kr", now, 50000, 30)
	require.Len(t, petitions, 2, "the item without a title must be skipped")

	first := petitions[0]
	assert.Equal(t, "12345", first.PetitionID)
	assert.Equal(t, "환경", first.Category)
	assert.Equal(t, "미세먼지 저감 대책 마련에 관한 청원", first.Title)
	assert.Equal(t, 1234, first.AgreeCount)
	assert.Equal(t, 50000, first.AgreeGoal)
	assert.Equal(t, petitionContentPlaceholder, first.Content)
	assert.Empty(t, first.Hashtags)
	assert.Equal(t, "https://petitions.assembly.go.kr/proceed/onGoingAll/12345", first.SourceURL)
	assert.True(t, first.StartDate.Equal(now))
	assert.True(t, first.EndDate.Equal(now.AddDate(0, 0, 30)))

	second := petitions[1]
	assert.Equal(t, "67890", second.PetitionID)
	assert.Equal(t, "교육", second.Category)
	assert.Equal(t, 50000, second.AgreeCount)
}

func TestExtractPetitionsMalformedCount(t *testing.T) {
	doc := mustDoc(t, `<html><body><ul class="board_list_type">
<li><a href="/proceed/onGoingAll/11111">
  <span class="type">[복지]</span>
  <p class="subject">청원 제목</p>
  <span class="blued">집계중</span>
</a></li>
</ul></body></html>`)

	petitions := ExtractPetitions(doc, "https://petitions.assembly.go.kr", time.Now(), 50000, 30)
	require.Len(t, petitions, 1)
	assert.Equal(t, 0, petitions[0].AgreeCount)
}

func TestExtractPetitionsEmptyPage(t *testing.T) {
	doc := mustDoc(t, `<html><body><div>점검 중입니다</div></body></html>`)
	assert.Empty(t, ExtractPetitions(doc, "https://petitions.assembly.go.kr", time.Now(), 50000, 30))
}
