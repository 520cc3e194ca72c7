package cache

import (
	"fmt"
	"time"
)

// TTLClass names an expiry bucket. Classes are assigned per endpoint from
// the expected upstream volatility and query cardinality.
type TTLClass string

const (
	ClassSearch         TTLClass = "search"
	ClassPagination     TTLClass = "pagination"
	ClassTopList        TTLClass = "top_list"
	ClassNews           TTLClass = "news"
	ClassDetail         TTLClass = "detail"
	ClassGenre          TTLClass = "genre"
	ClassRecommendation TTLClass = "recommendation"
)

// Policy maps each class to a duration.
type Policy map[TTLClass]time.Duration

func DefaultPolicy() Policy {
	return Policy{
		ClassSearch:         45 * time.Minute,
		ClassPagination:     time.Hour,
		ClassTopList:        2 * time.Hour,
		ClassNews:           6 * time.Hour,
		ClassDetail:         24 * time.Hour,
		ClassGenre:          24 * time.Hour,
		ClassRecommendation: 24 * time.Hour,
	}
}

// TTL returns the duration for class, falling back to the detail duration
// for classes the policy does not name.
func (p Policy) TTL(class TTLClass) time.Duration {
	if d, ok := p[class]; ok {
		return d
	}
	return p[ClassDetail]
}

// Validate checks the relative ordering
// search < pagination <= top list < news < detail, recommendation.
func (p Policy) Validate() error {
	for _, c := range []TTLClass{ClassSearch, ClassPagination, ClassTopList, ClassNews, ClassDetail, ClassGenre, ClassRecommendation} {
		if p[c] <= 0 {
			return fmt.Errorf("cache: ttl for %s must be positive", c)
		}
	}
	switch {
	case p[ClassSearch] >= p[ClassPagination]:
		return fmt.Errorf("cache: search ttl %s must be shorter than pagination ttl %s", p[ClassSearch], p[ClassPagination])
	case p[ClassPagination] > p[ClassTopList]:
		return fmt.Errorf("cache: pagination ttl %s must not exceed top list ttl %s", p[ClassPagination], p[ClassTopList])
	case p[ClassTopList] >= p[ClassNews]:
		return fmt.Errorf("cache: top list ttl %s must be shorter than news ttl %s", p[ClassTopList], p[ClassNews])
	case p[ClassNews] >= p[ClassDetail] || p[ClassNews] >= p[ClassRecommendation]:
		return fmt.Errorf("cache: news ttl %s must be shorter than detail and recommendation ttls", p[ClassNews])
	}
	return nil
}
