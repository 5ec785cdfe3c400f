package crawler

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"assembly_crawler/internal/models"

	"github.com/PuerkitoBio/goquery"
)

// The petitions listing does not expose real dates or the agree goal in this
// flow; the fixed window and goal are a known stub carried over deliberately.
const petitionContentPlaceholder = "상세 내용 확인 필요"

var (
	reBrackets  = regexp.MustCompile(`[\[\]]`)
	reNonDigits = regexp.MustCompile(`[^0-9]`)
)

// ExtractPetitions walks the rendered listing and returns one petition per
// list item. Items without a title are skipped.
func ExtractPetitions(doc *goquery.Document, baseURL string, now time.Time, agreeGoal, windowDays int) []models.Petition {
	var petitions []models.Petition

	doc.Find("ul.board_list_type li").Each(func(_ int, item *goquery.Selection) {
		title := strings.TrimSpace(item.Find(".subject").First().Text())
		if title == "" {
			return
		}

		// [분야] -> 분야
		category := strings.TrimSpace(reBrackets.ReplaceAllString(item.Find(".type").First().Text(), ""))

		countText := item.Find(".blued").First().Text()
		agreeCount, _ := strconv.Atoi(reNonDigits.ReplaceAllString(countText, ""))

		href := item.Find("a").First().AttrOr("href", "")
		segments := strings.Split(href, "/")
		petitionID := segments[len(segments)-1]
		if petitionID == "" {
			petitionID = strconv.FormatInt(now.UnixMilli(), 10)
		}

		petitions = append(petitions, models.Petition{
			PetitionID: petitionID,
			Category:   category,
			Title:      title,
			Content:    petitionContentPlaceholder,
			Hashtags:   []string{},
			AgreeCount: agreeCount,
			AgreeGoal:  agreeGoal,
			StartDate:  now,
			EndDate:    now.AddDate(0, 0, windowDays),
			SourceURL:  baseURL + href,
		})
	})

	return petitions
}
