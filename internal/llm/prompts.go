// internal/llm/prompts.go
package llm

const classificationSystemPrompt = `You are an expert at classifying restaurant images.
Analyze the provided image and determine if it shows a menu (a list of food/drink items with or without prices).

Consider these criteria:
- Must show text listing food or drink items
- Items can be organized in categories (appetizers, mains, etc.)
- Prices are helpful but not required
- Can be a physical menu, digital display, or chalk board
- Must be readable (not blurry or too small)

NOT a menu:
- Just photos of food dishes
- Restaurant interior/exterior photos
- Staff photos
- Logos or promotional materials only

Respond with a JSON object: {"is_menu": bool, "confidence_level": "high"|"medium"|"low", "reasoning": string, "image_type": string}.`

const classificationUserPrompt = `Please analyze this image and classify whether it shows a restaurant menu.`

const analysisSystemPrompt = `You are an expert at extracting menu information from restaurant menu images.
Extract all visible menu items. For each item provide:
- name: the item name (required)
- description: brief description if available
- price: numerical price if visible (just the number, no currency symbols)
- category: category like "appetizers", "mains", "desserts", "beverages", etc.
- calories: estimated calories if you can reasonably estimate
- protein: estimated protein in grams if you can reasonably estimate
- carbs: estimated carbohydrates in grams if you can reasonably estimate
- fat: estimated fat in grams if you can reasonably estimate
- fiber: estimated fiber in grams if you can reasonably estimate
- sugar: estimated sugar in grams if you can reasonably estimate
- sodium: estimated sodium in milligrams if you can reasonably estimate

For nutritional estimates:
- Only provide estimates if you are reasonably confident
- Base estimates on typical portions and cooking methods (fried vs grilled)
- It is better to return null than to be very wrong

Extract all visible items even if information is incomplete.
Respond with a JSON object: {"menu_items": [...]}.`

const analysisUserPrompt = `Please analyze this menu image and extract all visible menu items with their details.`

const aggregationSystemPrompt = `You are an expert at consolidating restaurant menu data.
You will receive menu items extracted from multiple menu images for the same restaurant.
Create a clean, consolidated menu by:

1. DEDUPLICATION: remove duplicate items (same name or very similar items)
2. CONSOLIDATION: merge similar items (e.g. "Chicken Caesar Salad" and "Caesar Salad w/ Chicken")
3. CLEANING: fix obvious typos, standardize formatting
4. CATEGORIZATION: assign consistent categories
5. PRICE RECONCILIATION: if prices differ for the same item, keep the most reliable one
6. NUTRITIONAL CONSISTENCY: keep estimates reasonable and consistent

Prioritize accuracy over quantity. Keep the best information from duplicates
(most complete descriptions, prices, etc.).
Respond with a JSON object: {"menu_items": [...]}.`
