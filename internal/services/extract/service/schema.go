package service

import (
	"orderlens/internal/adapters/llm"
	"orderlens/internal/core/recovery"
)

func str(desc string) map[string]any { return map[string]any{"type": "string", "description": desc} }

func integer(desc string) map[string]any { return map[string]any{"type": "integer", "description": desc} }

func strList(desc string) map[string]any {
	return map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": desc}
}

func object(props map[string]any, required ...string) map[string]any {
	return map[string]any{"type": "object", "properties": props, "required": required}
}

func array(desc string, item map[string]any) map[string]any {
	return map[string]any{"type": "array", "description": desc, "items": item}
}

// orderTool is the schema-constrained shape of the fallback tier
var orderTool = llm.Tool{
	Name:        recovery.ToolName,
	Description: "카카오톡 대화에서 주문 정보 및 패턴 분석 결과 추출",
	Schema: object(map[string]any{
		"time_based_orders": array("시간 순서대로 정렬된 개별 주문 내역. 모든 주문을 빠짐없이 기록합니다.", object(map[string]any{
			"time":     str("주문 시간 (예: '오전 9:51')"),
			"customer": str("주문 고객 이름 또는 닉네임"),
			"item":     str("주문 품목"),
			"quantity": integer("주문 수량"),
			"note":     str("참고 사항. 없으면 빈 문자열"),
		}, "time", "customer", "item", "quantity")),
		"item_based_summary": array("품목별 요약", object(map[string]any{
			"item":           str("품목명"),
			"total_quantity": integer("총 주문 수량"),
			"customers":      str("해당 품목 주문자 목록 (콤마로 구분)"),
		}, "item", "total_quantity", "customers")),
		"customer_based_orders": array("고객별로 그룹화된 주문 내역", object(map[string]any{
			"customer": str("주문자 이름 또는 ID"),
			"item":     str("주문 품목명"),
			"quantity": integer("주문 수량"),
			"note":     str("비고. 없으면 빈 문자열"),
		}, "customer", "item", "quantity", "note")),
		"order_pattern_analysis": object(map[string]any{
			"peak_hours":     strList("주문이 가장 많았던 시간대"),
			"popular_items":  strList("가장 인기 있었던 품목 (최대 5개)"),
			"sold_out_items": strList("품절된 품목 목록"),
		}, "peak_hours", "popular_items", "sold_out_items"),
	}, "time_based_orders", "customer_based_orders", "order_pattern_analysis"),
}

// productTool is the catalog refinement shape
var productTool = llm.Tool{
	Name:        "extract_products",
	Description: "대화에서 판매 상품 목록을 추출",
	Schema: object(map[string]any{
		"products": map[string]any{
			"type": "array",
			"items": object(map[string]any{
				"name":     str("상품명"),
				"sold_out": map[string]any{"type": "boolean", "description": "품절/마감 여부"},
				"quantity": map[string]any{"type": []string{"integer", "string", "null"}, "description": "수량 정보"},
			}, "name", "sold_out"),
		},
	}, "products"),
}
