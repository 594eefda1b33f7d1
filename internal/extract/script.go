package extract

// jsExtractPage is the in-page payload evaluated via Runtime.evaluate. It
// walks the visible content of the page and returns a markdown-flavoured
// plain-text rendering, with special handling for Confluence pages (code
// blocks, panels, status macros, tables). The payload is self-contained and
// returns a single string.
func jsExtractPage() string {
	return `(function() {
    var fence = "\x60\x60\x60";

    function isVisible(element) {
        if (!element) return false;
        var style = window.getComputedStyle(element);
        return style.display !== "none" &&
            style.visibility !== "hidden" &&
            style.opacity !== "0" &&
            element.offsetWidth > 0 &&
            element.offsetHeight > 0;
    }

    function extractStructuredText(element) {
        if (!element) return "";

        var clone = element.cloneNode(true);

        var selectorsToRemove = [
            "nav", "header", ".aui-header", "#header", ".confluence-navigation",
            ".footer", "footer", "#footer", ".ia-secondary-header", ".ia-secondary-content-sidebar",
            ".ads", ".advertisement", ".cookie", ".popup", ".modal",
            "iframe", "script", "style", "noscript", "#navigation",
            ".hidden-content", "#likes-and-labels-container"
        ];
        selectorsToRemove.forEach(function(selector) {
            clone.querySelectorAll(selector).forEach(function(el) { el.remove(); });
        });

        var metadata = "";
        var title = document.querySelector("#title-text") || document.querySelector("h1.pagetitle");
        if (title) {
            metadata += "# " + title.textContent.trim() + "\n\n";
        }
        var breadcrumbs = document.querySelector("#breadcrumbs");
        if (breadcrumbs) {
            metadata += "Path: " + breadcrumbs.textContent.replace(/\s+/g, " ").trim() + "\n\n";
        }
        var pageInfo = document.querySelector("#page-metadata-info");
        if (pageInfo) {
            metadata += pageInfo.textContent.replace(/\s+/g, " ").trim() + "\n\n";
        }

        clone.querySelectorAll("div.code, pre.syntaxhighlighter-pre, div.codeContent, div.syntaxhighlighter").forEach(function(codeBlock) {
            var language = "";
            var classes = codeBlock.className.split(" ");
            for (var i = 0; i < classes.length; i++) {
                var cls = classes[i];
                if (cls.indexOf("brush:") === 0) {
                    language = cls.split(":")[1];
                    break;
                } else if (["java", "python", "js", "xml", "sql", "bash", "shell", "cpp", "csharp"].indexOf(cls) >= 0) {
                    language = cls;
                    break;
                }
            }
            codeBlock.textContent = fence + language + "\n" + codeBlock.textContent.trim() + "\n" + fence;
        });

        clone.querySelectorAll(".confluence-information-macro, .panel, .aui-message").forEach(function(panel) {
            var panelType = "INFO:";
            if (panel.classList.contains("confluence-information-macro-tip") || panel.classList.contains("aui-message-success")) {
                panelType = "TIP:";
            } else if (panel.classList.contains("confluence-information-macro-note") || panel.classList.contains("aui-message-info")) {
                panelType = "NOTE:";
            } else if (panel.classList.contains("confluence-information-macro-warning") || panel.classList.contains("aui-message-warning")) {
                panelType = "WARNING:";
            } else if (panel.classList.contains("confluence-information-macro-error") || panel.classList.contains("aui-message-error")) {
                panelType = "ERROR:";
            }
            panel.textContent = "> " + panelType + " " + panel.textContent.trim();
        });

        clone.querySelectorAll(".status-macro").forEach(function(status) {
            var statusText = status.textContent.trim();
            var statusColor = status.classList.contains("status-green") ? "SUCCESS" :
                status.classList.contains("status-red") ? "FAILED" :
                status.classList.contains("status-yellow") ? "WARNING" : "INFO";
            status.textContent = "[STATUS: " + statusColor + "] " + statusText;
        });

        Array.prototype.forEach.call(clone.querySelectorAll("h1, h2, h3, h4, h5, h6"), function(heading) {
            var level = parseInt(heading.tagName[1], 10);
            var hashes = new Array(level + 1).join("#");
            heading.textContent = hashes + " " + heading.textContent.trim();
            var spacer = document.createElement("div");
            spacer.textContent = "\n";
            heading.parentNode.insertBefore(spacer, heading);
        });

        clone.querySelectorAll("table.confluenceTable, table.aui").forEach(function(table) {
            var textTable = document.createElement("div");
            var headers = Array.prototype.map.call(table.querySelectorAll("th"), function(th) {
                return th.textContent.trim();
            });
            var rows = Array.prototype.map.call(table.querySelectorAll("tr"), function(tr) {
                return Array.prototype.map.call(tr.querySelectorAll("td"), function(td) {
                    return td.textContent.trim();
                });
            }).filter(function(row) { return row.length > 0; });

            var tableText = "\n";
            if (headers.length > 0) {
                tableText += headers.join(" | ") + "\n";
                tableText += headers.map(function() { return "---"; }).join(" | ") + "\n";
            }
            rows.forEach(function(row) {
                tableText += row.join(" | ") + "\n";
            });
            textTable.textContent = tableText + "\n";
            table.parentNode.replaceChild(textTable, table);
        });

        clone.querySelectorAll("ul, ol").forEach(function(list) {
            var isOrdered = list.tagName.toLowerCase() === "ol";
            Array.prototype.forEach.call(list.querySelectorAll("li"), function(item, index) {
                var marker = isOrdered ? (index + 1) + ". " : "- ";
                item.textContent = marker + item.textContent.trim();
            });
        });

        var content = metadata + clone.innerText;
        content = content.replace(/\n\s*\n\s*\n+/g, "\n\n");
        return content;
    }

    var confluenceSelectors = [
        "#main-content", "#content", ".wiki-content", ".confluence-content",
        "#main", ".pageSection", "#page-content", ".aui-page-panel-content"
    ];
    for (var i = 0; i < confluenceSelectors.length; i++) {
        var elements = document.querySelectorAll(confluenceSelectors[i]);
        for (var j = 0; j < elements.length; j++) {
            if (isVisible(elements[j]) && elements[j].textContent.trim().length > 100) {
                return extractStructuredText(elements[j]);
            }
        }
    }

    var genericSelectors = [
        "article", "main", ".article-content", ".article-body",
        ".content", ".main-content", ".post-content"
    ];
    for (var i = 0; i < genericSelectors.length; i++) {
        var elements = document.querySelectorAll(genericSelectors[i]);
        for (var j = 0; j < elements.length; j++) {
            if (isVisible(elements[j]) && elements[j].textContent.trim().length > 200) {
                return extractStructuredText(elements[j]);
            }
        }
    }

    return extractStructuredText(document.body);
})()`
}
