package service

import (
	"fmt"
	"strings"
)

const primarySystem = `당신은 카카오톡 대화에서 주문 정보를 추출해 지정된 JSON 형식으로 반환하는 데이터 분석 전문가입니다.
대화를 분석해 시간순 주문 내역, 고객별 주문 내역, 주문 패턴을 추출하고 아래 구조의 JSON 객체 하나만 응답하세요. 설명이나 다른 텍스트는 포함하지 마세요.

{
  "time_based_orders": [{"time": "오후 12:02", "customer": "삼남매맘S2 8605", "item": "한우나주곰탕", "quantity": 2, "note": ""}],
  "customer_based_orders": [{"customer": "삼남매맘S2 8605", "item": "한우나주곰탕", "quantity": 2, "note": ""}],
  "order_pattern_analysis": {"peak_hours": ["오후 12:00-13:00"], "popular_items": ["한우나주곰탕"], "sold_out_items": ["오란다"]}
}

주문은 보통 다음처럼 표현됩니다.
1. "닉네임 / 품목 수량, 품목 수량" (예: "리리 / 우삼겹 2, 롤케이크 1")
2. "닉네임 전화번호 / 품목 수량" (예: "삼남매맘S2 8605 / 나주곰탕2개 사골곰탕1개")
3. "전화번호 / 품목 수량" (예: "3563/ 해장국1 나주곰탕1")
4. "닉네임 : 품목 수량" (예: "투윤 : 롤케익1")
취소 요청은 주문에서 제외하거나 note에 "취소"를 기록하고, 변경 요청은 최신 내용으로 반영하세요.
상품명과 주문자와 수량의 근거가 있으면 위 형식이 아니어도 주문으로 인식합니다.

반드시 지킬 것:
- 대화의 모든 주문을 하나도 빠짐없이 추출합니다.
- 품목명은 사용자 프롬프트의 "추출된 상품 목록"에 있는 정확한 이름으로 기록합니다. 대화에 "나주곰탕"이 나오고 목록에 "한우나주곰탕"이 있으면 "한우나주곰탕"입니다.
- 주문자 목록을 "외 O명", "등"으로 줄이지 않습니다.
- 판매자 계정의 상품 소개, 공지, 답변은 주문이 아닙니다.
- 동일인이 같은 품목을 다시 주문하면 최신 주문으로 반영합니다.
- "마감" 표시된 상품은 품절로 처리합니다.`

const fallbackSystem = `당신은 카카오톡 대화에서 주문 정보를 추출하는 데이터 분석 전문가입니다.
반드시 extract_order_info 도구로만 응답하세요. 일반 텍스트나 마크다운 응답은 허용되지 않습니다.

- 판매자가 올린 공지와 고객 주문을 구분합니다.
- 동일인이 같은 품목을 다시 주문하면 최신 주문으로 반영합니다.
- 품목명, 주문자명, 수량을 정확히 추출합니다.
- 주문을 누락하지 않으며 "외 n명", "등 n명"처럼 줄여 쓰지 않습니다.
- "마감"으로 표시된 상품은 판매가 종료된 상품입니다.
- 주문 패턴 분석에는 주문이 많은 시간대, 인기 상품, 품절 상품을 넣습니다.`

const catalogSystem = `당신은 채팅 대화에서 판매 중인 상품 목록을 추출하는 전문가입니다.
품절된 상품을 포함해 판매자가 언급한 모든 상품을 extract_products 도구로 반환하세요.

- 이모지는 상품명에 포함하지 않습니다.
- "마감", "세일", "공지", "판매" 같은 일반 단어는 상품명이 아닙니다.
- "❌마감❌", "마감", "품절" 표시가 있는 상품은 sold_out을 true로 설정합니다.
- 가격과 상품 설명은 추출하지 않습니다.
- "✔️한우나주곰탕"처럼 한 공지에 여러 상품이 나열되면 각각 하나의 상품입니다.`

// catalogInputCap bounds the seller text sent for catalog refinement, in characters
const catalogInputCap = 50000

const truncatedMark = "...(이하 생략)"

func systemPrompt(base, shop string) string {
	if shop == "" {
		return base
	}
	return base + fmt.Sprintf("\n\n분석 중인 대화는 '%s' 관련 내용입니다.", shop)
}

// userPrompt carries the catalog names (already sorted) and the transcript piece
func userPrompt(text string, names []string, forced bool) string {
	var b strings.Builder
	b.WriteString("아래 전처리된 카카오톡 대화 내용을 분석하여 주문 정보를 추출해주세요.\n")
	b.WriteString("대화에서 누가, 무엇을, 얼마나 주문했는지 정확하게 파악해 주세요.\n")
	if len(names) > 0 {
		b.WriteString("\n추출된 상품 목록 (이 목록을 기준으로 주문 품목명을 정확히 식별해주세요):\n")
		for _, n := range names {
			b.WriteString("- ")
			b.WriteString(n)
			b.WriteByte('\n')
		}
	}
	if forced {
		b.WriteString("\n반드시 extract_order_info 도구를 사용하여 응답해주세요.\n")
	}
	b.WriteString("\n===== 전처리된 대화 내용 =====\n")
	b.WriteString(text)
	b.WriteString("\n===================\n")
	return b.String()
}

func catalogPrompt(sellerText string) string {
	return "아래 카카오톡 대화 내용에서 판매 중인 모든 상품 목록(품절 포함)을 추출해주세요:\n\n" +
		capRunes(sellerText, catalogInputCap, truncatedMark) +
		"\n\n중복된 상품은 하나로 통합하고 최신 정보를 유지하세요.\nextract_products 도구를 사용하여 결과를 제공해주세요."
}

// capRunes keeps the first n characters of s and appends mark when anything was cut
func capRunes(s string, n int, mark string) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos] + mark
		}
		i++
	}
	return s
}
